package havs

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryInput is one equipment row for one member, as sent by the grid.
type EntryInput struct {
	MemberID      string     `json:"member_id" binding:"required"`
	EquipmentName string     `json:"equipment_name" binding:"required"`
	Minutes       DayMinutes `json:"minutes"`
}

type SaveResult struct {
	SavedAt time.Time `json:"saved_at"`
	Upserts int       `json:"upserts"`
	Pruned  int       `json:"pruned"`
}

// SaveEntries persists grid rows for a draft week. Rows upsert on
// (member, equipment); a row whose minutes are all zero is deleted instead.
func SaveEntries(ctx context.Context, db *gorm.DB, gangerID uint, weekID string, inputs []EntryInput) (*SaveResult, error) {
	var res SaveResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := loadDraftWeek(tx, gangerID, weekID)
		if err != nil {
			return err
		}
		res.Upserts, res.Pruned, err = applyEntries(tx, w, inputs)
		if err != nil {
			return err
		}

		res.SavedAt = time.Now().UTC()
		return touchDraft(tx, w.ID, res.SavedAt)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func applyEntries(tx *gorm.DB, w *Week, inputs []EntryInput) (upserts, pruned int, err error) {
	if len(inputs) == 0 {
		return 0, 0, nil
	}

	var memberIDs []string
	if err := tx.Model(&Member{}).Where("week_id = ?", w.ID).Pluck("id", &memberIDs).Error; err != nil {
		return 0, 0, fmt.Errorf("load members: %w", err)
	}
	onWeek := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		onWeek[id] = true
	}

	for _, in := range inputs {
		if !onWeek[in.MemberID] {
			return 0, 0, fmt.Errorf("%w: %s is not on this week", ErrMemberNotFound, in.MemberID)
		}
		eq, err := LookupEquipment(in.EquipmentName)
		if err != nil {
			return 0, 0, err
		}
		if err := in.Minutes.Validate(); err != nil {
			return 0, 0, err
		}

		if in.Minutes.IsZero() {
			res := tx.Where("member_id = ? AND equipment_name = ?", in.MemberID, eq.Name).Delete(&Entry{})
			if res.Error != nil {
				return 0, 0, fmt.Errorf("prune entry: %w", res.Error)
			}
			pruned += int(res.RowsAffected)
			continue
		}

		e := Entry{
			WeekID:        w.ID,
			MemberID:      in.MemberID,
			EquipmentName: eq.Name,
			Category:      eq.Category,
			DayMinutes:    in.Minutes,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}, {Name: "equipment_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun", "updated_at"}),
		}).Create(&e).Error; err != nil {
			return 0, 0, fmt.Errorf("upsert entry: %w", err)
		}
		upserts++
	}
	return upserts, pruned, nil
}

// UpdateNotes edits the week's free-text notes while it is still a draft.
func UpdateNotes(ctx context.Context, db *gorm.DB, gangerID uint, weekID, notes string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := loadDraftWeek(tx, gangerID, weekID)
		if err != nil {
			return err
		}
		res := tx.Model(&Week{}).Where("id = ? AND status = ?", w.ID, StatusDraft).Update("notes", notes)
		if res.Error != nil {
			return fmt.Errorf("update notes: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrWeekSubmitted
		}
		return nil
	})
}
