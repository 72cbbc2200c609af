package employees

import (
	"strings"
	"time"

	"fieldops-app/internal/domain/users"
)

const (
	RoleAdmin      = "Admin"
	RoleGanger     = "Ganger"
	RoleOperative  = "Operative"
	RoleLabourer   = "Labourer"
	RoleSupervisor = "Supervisor"
)

var validRoles = []string{RoleAdmin, RoleGanger, RoleOperative, RoleLabourer, RoleSupervisor}

// NormalizeRole maps a role name to its canonical spelling, case-insensitively.
func NormalizeRole(role string) (string, bool) {
	role = strings.TrimSpace(role)
	for _, r := range validRoles {
		if strings.EqualFold(r, role) {
			return r, true
		}
	}
	return "", false
}

type Vehicle struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Registration string `gorm:"not null;uniqueIndex:idx_vehicles_registration" json:"registration"`
	Description  string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Employee struct {
	ID     uint        `gorm:"primaryKey" json:"id"`
	UserID uint        `gorm:"not null;uniqueIndex:idx_employees_user_id" json:"user_id"`
	User   *users.User `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Role      string `gorm:"type:varchar(20);not null;index" json:"role"`

	AssignedVehicleID *uint    `gorm:"index" json:"assigned_vehicle_id,omitempty"`
	AssignedVehicle   *Vehicle `gorm:"constraint:OnDelete:SET NULL;" json:"assigned_vehicle,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

func (e Employee) IsGanger() bool { return e.Role == RoleGanger }
