package auth

import (
	"testing"

	"fieldops-app/internal/domain/employees"
	"fieldops-app/internal/domain/users"
	"fieldops-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkGoogleUser(t *testing.T) {
	db := testutil.NewDB(t)
	emp := testutil.SeedEmployee(t, db, "Gary", "Hughes", employees.RoleGanger)

	t.Run("unknown address is refused", func(t *testing.T) {
		_, err := linkGoogleUser(db, &googleIDClaims{Sub: "g-1", Email: "stranger@example.com"})
		assert.ErrorIs(t, err, errNoAccount)

		var n int64
		require.NoError(t, db.Model(&users.User{}).Count(&n).Error)
		assert.EqualValues(t, 1, n)
	})

	t.Run("first sign-in links the subject", func(t *testing.T) {
		u, err := linkGoogleUser(db, &googleIDClaims{Sub: "g-42", Email: emp.User.Email})
		require.NoError(t, err)
		assert.Equal(t, emp.UserID, u.ID)

		var stored users.User
		require.NoError(t, db.First(&stored, emp.UserID).Error)
		require.NotNil(t, stored.GoogleSub)
		assert.Equal(t, "g-42", *stored.GoogleSub)
	})

	t.Run("later sign-ins match on subject", func(t *testing.T) {
		u, err := linkGoogleUser(db, &googleIDClaims{Sub: "g-42", Email: "renamed@example.com"})
		require.NoError(t, err)
		assert.Equal(t, emp.UserID, u.ID)
	})
}
