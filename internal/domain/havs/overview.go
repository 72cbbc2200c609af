package havs

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// WeekSummary is one row of the weekly overview.
type WeekSummary struct {
	ID             string     `json:"id"`
	GangerID       uint       `json:"ganger_id"`
	GangerName     string     `json:"ganger_name"`
	WeekEnding     Date       `json:"week_ending"`
	Status         string     `json:"status"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	LastSavedAt    *time.Time `json:"last_saved_at,omitempty"`
	RevisionNumber int        `json:"revision_number"`
	MemberCount    int        `json:"member_count"`
	TotalMinutes   int        `json:"total_minutes"`
}

type OverviewFilter struct {
	WeekEnding Date
	From       Date
	To         Date
	Status     string
	GangerID   uint
}

// ListWeeks returns a ganger's own weeks, newest first.
func ListWeeks(ctx context.Context, db *gorm.DB, gangerID uint) ([]WeekSummary, error) {
	return EmployerWeeklyOverview(ctx, db, OverviewFilter{GangerID: gangerID})
}

// EmployerWeeklyOverview summarises weeks across all gangers for admins.
func EmployerWeeklyOverview(ctx context.Context, db *gorm.DB, f OverviewFilter) ([]WeekSummary, error) {
	tx := db.WithContext(ctx)

	q := tx.Model(&Week{}).Preload("Ganger")
	if f.GangerID != 0 {
		q = q.Where("ganger_id = ?", f.GangerID)
	}
	if f.WeekEnding != "" {
		q = q.Where("week_ending = ?", f.WeekEnding)
	}
	if f.From != "" {
		q = q.Where("week_ending >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("week_ending <= ?", f.To)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var weeks []Week
	if err := q.Order("week_ending DESC, created_at ASC").Find(&weeks).Error; err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	return summarize(tx, weeks)
}

func summarize(tx *gorm.DB, weeks []Week) ([]WeekSummary, error) {
	out := make([]WeekSummary, 0, len(weeks))
	if len(weeks) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(weeks))
	for _, w := range weeks {
		ids = append(ids, w.ID)
	}

	type agg struct {
		WeekID string
		N      int
	}
	var totals, counts []agg
	if err := tx.Model(&Entry{}).
		Select("week_id, "+totalMinutesExpr+" AS n").
		Where("week_id IN ?", ids).
		Group("week_id").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("sum exposure: %w", err)
	}
	if err := tx.Model(&Member{}).
		Select("week_id, COUNT(*) AS n").
		Where("week_id IN ?", ids).
		Group("week_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}

	totalByWeek := make(map[string]int, len(totals))
	for _, t := range totals {
		totalByWeek[t.WeekID] = t.N
	}
	countByWeek := make(map[string]int, len(counts))
	for _, c := range counts {
		countByWeek[c.WeekID] = c.N
	}

	for _, w := range weeks {
		s := WeekSummary{
			ID:             w.ID,
			GangerID:       w.GangerID,
			WeekEnding:     w.WeekEnding,
			Status:         w.Status,
			SubmittedAt:    w.SubmittedAt,
			LastSavedAt:    w.LastSavedAt,
			RevisionNumber: w.RevisionNumber,
			MemberCount:    countByWeek[w.ID],
			TotalMinutes:   totalByWeek[w.ID],
		}
		if w.Ganger != nil {
			s.GangerName = w.Ganger.FullName()
		}
		out = append(out, s)
	}
	return out, nil
}
