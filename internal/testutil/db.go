// Package testutil holds helpers shared by store-backed tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"fieldops-app/database"
	"fieldops-app/internal/domain/employees"
	"fieldops-app/internal/domain/users"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with the full schema and
// installs it as database.DB for the duration of the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := gorm.Open(sqlite.Open(dsn), database.Config())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared-cache database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = sqlDB.Close()
	})
	return db
}

// Password is the plain-text password every seeded account gets.
const Password = "s3cretpass"

// SeedEmployee creates a user plus employee with the given role. Admin
// employees also get the admin user role.
func SeedEmployee(t *testing.T, db *gorm.DB, first, last, role string) employees.Employee {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	pw := string(hash)

	userRole := users.RoleUser
	if role == employees.RoleAdmin {
		userRole = users.RoleAdmin
	}
	u := users.User{
		Email:    strings.ToLower(first+"."+last) + "@example.com",
		Password: &pw,
		Role:     userRole,
	}
	require.NoError(t, db.Create(&u).Error)

	e := employees.Employee{UserID: u.ID, FirstName: first, LastName: last, Role: role}
	require.NoError(t, db.Create(&e).Error)
	e.User = &u
	return e
}
