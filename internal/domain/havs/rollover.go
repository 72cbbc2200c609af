package havs

import (
	"context"
	"errors"
	"fmt"

	"fieldops-app/internal/domain/employees"

	"gorm.io/gorm"
)

type StartWeekInput struct {
	GangerID           uint
	WeekEnding         Date
	CarryOverMemberIDs []string
}

// StartWeek creates a draft week for a ganger with the ganger's own member row
// and, optionally, operatives carried over from one of the ganger's earlier
// weeks. Only the roster carries over; exposure starts at zero.
//
// The week row is written first. If any member row then fails, the week and
// whatever members were written are deleted again before the error returns.
func StartWeek(ctx context.Context, db *gorm.DB, in StartWeekInput) (*WeekDetails, error) {
	db = db.WithContext(ctx)

	if !IsWeekEnding(in.WeekEnding) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWeekEnding, in.WeekEnding)
	}

	var ganger employees.Employee
	if err := db.First(&ganger, in.GangerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: employee %d does not exist", ErrNotGanger, in.GangerID)
		}
		return nil, fmt.Errorf("load ganger: %w", err)
	}
	if !ganger.IsGanger() {
		return nil, ErrNotGanger
	}

	carried, err := carryOverMembers(db, ganger.ID, in.CarryOverMemberIDs)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := gangerWeeksQuery(db, ganger.ID).Where("week_ending = ?", in.WeekEnding).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check existing week: %w", err)
	}
	if existing > 0 {
		return nil, ErrWeekExists
	}

	week := Week{
		GangerID:   ganger.ID,
		WeekEnding: in.WeekEnding,
		Status:     StatusDraft,
	}
	if err := db.Create(&week).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrWeekExists
		}
		return nil, fmt.Errorf("create week: %w", err)
	}

	members := make([]Member, 0, len(carried)+1)
	members = append(members, Member{
		WeekID:     week.ID,
		PersonType: PersonGanger,
		EmployeeID: &ganger.ID,
		Role:       ganger.Role,
	})
	for _, prev := range carried {
		members = append(members, Member{
			WeekID:     week.ID,
			PersonType: PersonOperative,
			EmployeeID: prev.EmployeeID,
			ManualName: prev.ManualName,
			Role:       prev.Role,
		})
	}

	for i := range members {
		if err := db.Create(&members[i]).Error; err != nil {
			if rbErr := discardWeek(db, week.ID); rbErr != nil {
				return nil, fmt.Errorf("create member: %w (rollback failed: %v)", err, rbErr)
			}
			return nil, fmt.Errorf("create member: %w", err)
		}
	}

	return loadDetails(db, week.ID)
}

func discardWeek(db *gorm.DB, weekID string) error {
	if err := db.Where("week_id = ?", weekID).Delete(&Member{}).Error; err != nil {
		return err
	}
	return db.Delete(&Week{}, "id = ?", weekID).Error
}

// carryOverMembers resolves member ids from the ganger's previous weeks. The
// ganger's own rows are skipped since a fresh one is always created.
func carryOverMembers(db *gorm.DB, gangerID uint, ids []string) ([]Member, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil, nil
	}

	var found []Member
	if err := db.
		Where("id IN ?", unique).
		Where("week_id IN (?)", gangerWeeksQuery(db, gangerID).Select("id")).
		Find(&found).Error; err != nil {
		return nil, fmt.Errorf("load carry-over members: %w", err)
	}
	if len(found) != len(unique) {
		return nil, fmt.Errorf("%w: carry-over members must come from your own weeks", ErrMemberNotFound)
	}

	operatives := make([]Member, 0, len(found))
	people := make(map[string]bool)
	for _, m := range found {
		if m.PersonType != PersonOperative {
			continue
		}
		key := personKey(m)
		if people[key] {
			continue
		}
		people[key] = true
		operatives = append(operatives, m)
	}
	if len(operatives) > MaxOperatives {
		return nil, ErrGangFull
	}
	return operatives, nil
}

func personKey(m Member) string {
	if m.EmployeeID != nil {
		return fmt.Sprintf("employee:%d", *m.EmployeeID)
	}
	if m.ManualName != nil {
		return "manual:" + *m.ManualName
	}
	return "member:" + m.ID
}
