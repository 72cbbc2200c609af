// Package accounts creates and removes the user + employee pairs that make up
// a field-operations account.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"fieldops-app/internal/domain/employees"
	"fieldops-app/internal/domain/havs"
	"fieldops-app/internal/domain/users"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidName    = errors.New("first and last name are required")
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrWeakPassword   = errors.New("password must be at least 8 characters long and contain both letters and numbers")
	ErrInvalidRole    = errors.New("unknown employee role")
	ErrUnknownVehicle = errors.New("assigned vehicle does not exist")
	ErrEmailTaken     = errors.New("an account with this email already exists")
	ErrAdminExists    = errors.New("an admin account already exists")
	ErrOwnsWeeks      = errors.New("employee owns HAVS weeks and cannot be deleted")
	ErrNoTarget       = errors.New("employee_id or user_id is required")
)

// IsValidation reports whether err came from bad input.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidName, ErrInvalidEmail, ErrWeakPassword, ErrInvalidRole, ErrUnknownVehicle, ErrNoTarget} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsEmailValid(email string) bool {
	return emailPattern.MatchString(email)
}

type NewEmployee struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	Role              string `json:"role"`
	AssignedVehicleID *uint  `json:"assignedVehicle"`
}

func (in *NewEmployee) normalize() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.FirstName == "" || in.LastName == "" {
		return ErrInvalidName
	}
	if !IsEmailValid(in.Email) {
		return ErrInvalidEmail
	}
	if !IsPasswordStrong(in.Password) {
		return ErrWeakPassword
	}
	role, ok := employees.NormalizeRole(in.Role)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}
	in.Role = role
	return nil
}

// CreateEmployeeAccount writes the user first and the employee second. If the
// employee cannot be written the user is deleted again, so no half-created
// account is left behind.
func CreateEmployeeAccount(ctx context.Context, db *gorm.DB, in NewEmployee) (*employees.Employee, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	db = db.WithContext(ctx)

	if in.AssignedVehicleID != nil {
		var n int64
		if err := db.Model(&employees.Vehicle{}).Where("id = ?", *in.AssignedVehicleID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check vehicle: %w", err)
		}
		if n == 0 {
			return nil, ErrUnknownVehicle
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	pw := string(hashed)

	userRole := users.RoleUser
	if in.Role == employees.RoleAdmin {
		userRole = users.RoleAdmin
	}
	user := users.User{
		Email:        in.Email,
		Password:     &pw,
		AuthProvider: "local",
		Role:         userRole,
	}
	if err := db.Create(&user).Error; err != nil {
		if havs.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	emp := employees.Employee{
		UserID:            user.ID,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Role:              in.Role,
		AssignedVehicleID: in.AssignedVehicleID,
	}
	if err := db.Create(&emp).Error; err != nil {
		if rbErr := db.Delete(&users.User{}, user.ID).Error; rbErr != nil {
			return nil, fmt.Errorf("create employee: %w (rollback failed: %v)", err, rbErr)
		}
		return nil, fmt.Errorf("create employee: %w", err)
	}
	emp.User = &user
	return &emp, nil
}

// BootstrapAdmin creates the first admin account. It refuses once any admin
// user exists.
func BootstrapAdmin(ctx context.Context, db *gorm.DB, in NewEmployee) (*employees.Employee, error) {
	var admins int64
	if err := db.WithContext(ctx).Model(&users.User{}).Where("role = ?", users.RoleAdmin).Count(&admins).Error; err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil, ErrAdminExists
	}
	in.Role = employees.RoleAdmin
	return CreateEmployeeAccount(ctx, db, in)
}

// DeleteAccount removes an employee and its login. Either id may be zero; the
// other is used to find the pair. Targets that are already gone are skipped.
//
// Exposure history is kept: weeks the employee owns block the delete, and
// operative memberships are converted to manual entries under their name.
func DeleteAccount(ctx context.Context, db *gorm.DB, employeeID, userID uint) error {
	if employeeID == 0 && userID == 0 {
		return ErrNoTarget
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp employees.Employee
		q := tx
		if employeeID != 0 {
			q = q.Where("id = ?", employeeID)
		} else {
			q = q.Where("user_id = ?", userID)
		}
		err := q.First(&emp).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// profile already gone
		case err != nil:
			return fmt.Errorf("load employee: %w", err)
		default:
			if err := detachEmployee(tx, emp); err != nil {
				return err
			}
			if userID == 0 {
				userID = emp.UserID
			}
		}

		if userID == 0 {
			return nil
		}
		if err := tx.Delete(&users.User{}, userID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

func detachEmployee(tx *gorm.DB, emp employees.Employee) error {
	var owned int64
	if err := tx.Model(&havs.Week{}).Where("ganger_id = ?", emp.ID).Count(&owned).Error; err != nil {
		return fmt.Errorf("count owned weeks: %w", err)
	}
	if owned > 0 {
		return ErrOwnsWeeks
	}

	if err := tx.Model(&havs.Member{}).
		Where("employee_id = ?", emp.ID).
		Updates(map[string]interface{}{"employee_id": nil, "manual_name": emp.FullName()}).Error; err != nil {
		return fmt.Errorf("detach memberships: %w", err)
	}
	if err := tx.Delete(&employees.Employee{}, emp.ID).Error; err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}
