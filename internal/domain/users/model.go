package users

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the authentication identity. The field-facing profile lives on
// employees.Employee, which points back here through UserID.
type User struct {
	ID           uint    `gorm:"primaryKey"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string  `gorm:"type:varchar(20);not null;default:'user'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
