package havs

import (
	"context"
	"fmt"
	"time"

	"fieldops-app/internal/domain/employees"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
)

const (
	ComplianceMissing = "missing"

	// maxComplianceWeeks bounds a single report to roughly two years.
	maxComplianceWeeks = 105
)

type ComplianceRow struct {
	WeekEnding   Date    `json:"week_ending"`
	GangerID     uint    `json:"ganger_id"`
	GangerName   string  `json:"ganger_name"`
	Status       string  `json:"status"`
	WeekID       *string `json:"week_id,omitempty"`
	TotalMinutes int     `json:"total_minutes"`
}

// WeekEndingsBetween lists every Sunday in [from, to].
func WeekEndingsBetween(from, to Date) ([]Date, error) {
	if from == "" || to == "" || to < from {
		return nil, fmt.Errorf("%w: %q to %q", ErrInvalidRange, from, to)
	}
	// any span of 7n days holds at least n Sundays
	if days := to.Time().Sub(from.Time()) / (24 * time.Hour); days/7 > maxComplianceWeeks {
		return nil, tooManyWeeks()
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rrule.SU},
		Dtstart:   from.Time(),
		Until:     to.Time(),
	})
	if err != nil {
		return nil, fmt.Errorf("build week rule: %w", err)
	}

	occurrences := r.All()
	if len(occurrences) > maxComplianceWeeks {
		return nil, tooManyWeeks()
	}
	out := make([]Date, 0, len(occurrences))
	for _, t := range occurrences {
		out = append(out, NewDate(t))
	}
	return out, nil
}

func tooManyWeeks() error {
	return fmt.Errorf("%w: at most %d weeks per report", ErrInvalidRange, maxComplianceWeeks)
}

// WeeklyCompliance reports, for every ganger and every week ending in range,
// whether a week was submitted, left in draft, or never started.
func WeeklyCompliance(ctx context.Context, db *gorm.DB, from, to Date) ([]ComplianceRow, error) {
	weekEndings, err := WeekEndingsBetween(from, to)
	if err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx)

	var gangers []employees.Employee
	if err := tx.Where("role = ?", employees.RoleGanger).Order("last_name ASC, first_name ASC").Find(&gangers).Error; err != nil {
		return nil, fmt.Errorf("list gangers: %w", err)
	}

	summaries, err := EmployerWeeklyOverview(ctx, db, OverviewFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	type key struct {
		ganger uint
		week   Date
	}
	byKey := make(map[key]WeekSummary, len(summaries))
	for _, s := range summaries {
		byKey[key{s.GangerID, s.WeekEnding}] = s
	}

	rows := make([]ComplianceRow, 0, len(weekEndings)*len(gangers))
	for _, we := range weekEndings {
		for _, g := range gangers {
			row := ComplianceRow{
				WeekEnding: we,
				GangerID:   g.ID,
				GangerName: g.FullName(),
				Status:     ComplianceMissing,
			}
			if s, ok := byKey[key{g.ID, we}]; ok {
				id := s.ID
				row.Status = s.Status
				row.WeekID = &id
				row.TotalMinutes = s.TotalMinutes
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
