package havs

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const totalMinutesExpr = "COALESCE(SUM(mon + tue + wed + thu + fri + sat + sun), 0)"

func gangerWeeksQuery(db *gorm.DB, gangerID uint) *gorm.DB {
	return db.Model(&Week{}).Where("ganger_id = ?", gangerID)
}

func loadOwnedWeek(tx *gorm.DB, gangerID uint, weekID string) (*Week, error) {
	var w Week
	if err := gangerWeeksQuery(tx, gangerID).Where("id = ?", weekID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load week: %w", err)
	}
	return &w, nil
}

// loadDraftWeek is loadOwnedWeek for operations that mutate the week. The row
// stays locked until tx ends, so a concurrent submit or roster change waits.
func loadDraftWeek(tx *gorm.DB, gangerID uint, weekID string) (*Week, error) {
	w, err := loadOwnedWeek(tx.Clauses(clause.Locking{Strength: "UPDATE"}), gangerID, weekID)
	if err != nil {
		return nil, err
	}
	if w.IsSubmitted() {
		return nil, ErrWeekSubmitted
	}
	return w, nil
}

// touchDraft stamps last_saved_at, refusing a week that is no longer a draft.
func touchDraft(tx *gorm.DB, weekID string, at time.Time) error {
	res := tx.Model(&Week{}).
		Where("id = ? AND status = ?", weekID, StatusDraft).
		Update("last_saved_at", at)
	if res.Error != nil {
		return fmt.Errorf("stamp save: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrWeekSubmitted
	}
	return nil
}

func loadMembers(tx *gorm.DB, weekID string) ([]Member, error) {
	var members []Member
	if err := tx.Preload("Employee").Where("week_id = ?", weekID).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	return members, nil
}

func weekTotal(tx *gorm.DB, weekID string) (int, error) {
	var total int64
	if err := tx.Model(&Entry{}).Where("week_id = ?", weekID).Select(totalMinutesExpr).Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum exposure: %w", err)
	}
	return int(total), nil
}

func countOperatives(members []Member) int {
	n := 0
	for _, m := range members {
		if m.PersonType == PersonOperative {
			n++
		}
	}
	return n
}
