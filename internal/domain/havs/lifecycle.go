package havs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type SubmitInput struct {
	Entries []EntryInput `json:"entries"`
	Notes   string       `json:"notes"`
}

// SubmitWeek locks a draft week. Pending entries are applied first, then the
// status flips to submitted and a revision snapshot is written, all in one
// transaction: on any failure the week stays a draft with nothing applied.
func SubmitWeek(ctx context.Context, db *gorm.DB, gangerID uint, weekID string, in SubmitInput) (*WeekDetails, error) {
	var details *WeekDetails
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := loadDraftWeek(tx, gangerID, weekID)
		if err != nil {
			return err
		}
		if _, _, err := applyEntries(tx, w, in.Entries); err != nil {
			return err
		}

		total, err := weekTotal(tx, w.ID)
		if err != nil {
			return err
		}
		if total == 0 {
			return ErrNothingToSubmit
		}

		now := time.Now().UTC()
		next := w.RevisionNumber + 1
		res := tx.Model(&Week{}).
			Where("id = ? AND status = ?", w.ID, StatusDraft).
			Updates(map[string]interface{}{
				"status":          StatusSubmitted,
				"submitted_at":    now,
				"last_saved_at":   now,
				"revision_number": next,
			})
		if res.Error != nil {
			return fmt.Errorf("lock week: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrWeekSubmitted
		}

		snapshot, err := loadDetails(tx, w.ID)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}

		rev := Revision{
			WeekID:         w.ID,
			RevisionNumber: next,
			Notes:          in.Notes,
			Snapshot:       raw,
		}
		if err := tx.Create(&rev).Error; err != nil {
			return fmt.Errorf("record revision: %w", err)
		}

		snapshot.Revisions = append(snapshot.Revisions, RevisionSummary{
			RevisionNumber: rev.RevisionNumber,
			Notes:          rev.Notes,
			CreatedAt:      rev.CreatedAt,
		})
		details = snapshot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// LoadRevision returns a stored snapshot decoded back into week details.
func LoadRevision(ctx context.Context, db *gorm.DB, weekID string, number int) (*WeekDetails, error) {
	var rev Revision
	if err := db.WithContext(ctx).First(&rev, "week_id = ? AND revision_number = ?", weekID, number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load revision: %w", err)
	}
	var d WeekDetails
	if err := json.Unmarshal(rev.Snapshot, &d); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &d, nil
}
