package havs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fieldops-app/internal/domain/employees"

	"gorm.io/gorm"
)

// AddEmployeeOperative attaches an existing employee to a draft week's gang.
func AddEmployeeOperative(ctx context.Context, db *gorm.DB, gangerID uint, weekID string, employeeID uint) (*Member, error) {
	var member Member
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := loadDraftWeek(tx, gangerID, weekID)
		if err != nil {
			return err
		}

		var emp employees.Employee
		if err := tx.First(&emp, employeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: employee %d does not exist", ErrInvalidMember, employeeID)
			}
			return fmt.Errorf("load employee: %w", err)
		}
		if emp.Role == employees.RoleAdmin {
			return ErrNotOperative
		}

		members, err := loadMembers(tx, w.ID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.EmployeeID != nil && *m.EmployeeID == emp.ID {
				return ErrDuplicateMember
			}
		}
		if countOperatives(members) >= MaxOperatives {
			return ErrGangFull
		}

		member = Member{
			WeekID:     w.ID,
			PersonType: PersonOperative,
			EmployeeID: &emp.ID,
			Role:       emp.Role,
		}
		if err := tx.Create(&member).Error; err != nil {
			if IsUniqueViolation(err) {
				return ErrDuplicateMember
			}
			return fmt.Errorf("create member: %w", err)
		}
		member.Employee = &emp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddManualOperative attaches someone without an employee record, keyed on
// their name.
func AddManualOperative(ctx context.Context, db *gorm.DB, gangerID uint, weekID string, name string) (*Member, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, ErrInvalidMember
	}

	var member Member
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := loadDraftWeek(tx, gangerID, weekID)
		if err != nil {
			return err
		}

		members, err := loadMembers(tx, w.ID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if strings.EqualFold(m.DisplayName(), name) {
				return ErrDuplicateMember
			}
		}
		if countOperatives(members) >= MaxOperatives {
			return ErrGangFull
		}

		member = Member{
			WeekID:     w.ID,
			PersonType: PersonOperative,
			ManualName: &name,
			Role:       employees.RoleOperative,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveOperative deletes an operative and their exposure rows from a draft
// week. The ganger's own row is never removable.
func RemoveOperative(ctx context.Context, db *gorm.DB, gangerID uint, weekID, memberID string, confirmed bool) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := loadDraftWeek(tx, gangerID, weekID)
		if err != nil {
			return err
		}

		var m Member
		if err := tx.First(&m, "id = ? AND week_id = ?", memberID, w.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("load member: %w", err)
		}
		if m.PersonType == PersonGanger {
			return ErrGangerMember
		}
		if !confirmed {
			return ErrConfirmationRequired
		}

		if err := tx.Where("member_id = ?", m.ID).Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("delete member entries: %w", err)
		}
		if err := tx.Delete(&Member{}, "id = ?", m.ID).Error; err != nil {
			return fmt.Errorf("delete member: %w", err)
		}
		return nil
	})
}

// AvailableOperatives lists employees that could still join the week's gang.
func AvailableOperatives(ctx context.Context, db *gorm.DB, gangerID uint, weekID string) ([]employees.Employee, error) {
	tx := db.WithContext(ctx)
	w, err := loadOwnedWeek(tx, gangerID, weekID)
	if err != nil {
		return nil, err
	}

	taken := tx.Model(&Member{}).Select("employee_id").Where("week_id = ? AND employee_id IS NOT NULL", w.ID)

	var out []employees.Employee
	if err := tx.
		Where("role <> ?", employees.RoleAdmin).
		Where("id NOT IN (?)", taken).
		Order("last_name ASC, first_name ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return out, nil
}
