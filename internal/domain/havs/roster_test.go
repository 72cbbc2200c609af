package havs_test

import (
	"context"
	"testing"

	"fieldops-app/internal/domain/employees"
	"fieldops-app/internal/domain/havs"
	"fieldops-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	ganger employees.Employee
	week   *havs.WeekDetails
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	ctx := context.Background()
	g := testutil.SeedEmployee(t, db, "Gary", "Hughes", employees.RoleGanger)

	week, err := havs.StartWeek(ctx, db, havs.StartWeekInput{GangerID: g.ID, WeekEnding: "2024-06-09"})
	require.NoError(t, err)
	return &fixture{ctx: ctx, db: db, ganger: g, week: week}
}

func (f *fixture) gangerMemberID(t *testing.T) string {
	t.Helper()
	for _, m := range f.week.Members {
		if m.PersonType == havs.PersonGanger {
			return m.ID
		}
	}
	t.Fatal("week has no ganger member")
	return ""
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestAddManualOperative(t *testing.T) {
	f := newFixture(t)

	m, err := havs.AddManualOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "  Jane   Doe ")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", m.DisplayName())
	assert.Equal(t, "manual", m.Source())
	assert.Nil(t, m.EmployeeID)

	_, err = havs.AddManualOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "jane doe")
	assert.ErrorIs(t, err, havs.ErrDuplicateMember)

	_, err = havs.AddManualOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "   ")
	assert.ErrorIs(t, err, havs.ErrInvalidMember)
}

func TestAddEmployeeOperative(t *testing.T) {
	f := newFixture(t)
	op := testutil.SeedEmployee(t, f.db, "Olly", "Price", employees.RoleOperative)
	admin := testutil.SeedEmployee(t, f.db, "Ada", "Admin", employees.RoleAdmin)

	m, err := havs.AddEmployeeOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "Olly Price", m.DisplayName())
	assert.Equal(t, employees.RoleOperative, m.Role)

	_, err = havs.AddEmployeeOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, op.ID)
	assert.ErrorIs(t, err, havs.ErrDuplicateMember)

	_, err = havs.AddEmployeeOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, f.ganger.ID)
	assert.ErrorIs(t, err, havs.ErrDuplicateMember, "the ganger is already on the week")

	_, err = havs.AddEmployeeOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, admin.ID)
	assert.ErrorIs(t, err, havs.ErrNotOperative)

	_, err = havs.AddEmployeeOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, 9999)
	assert.ErrorIs(t, err, havs.ErrInvalidMember)
}

func TestAddOperative_CapacityIsTwo(t *testing.T) {
	f := newFixture(t)
	op := testutil.SeedEmployee(t, f.db, "Olly", "Price", employees.RoleOperative)
	third := testutil.SeedEmployee(t, f.db, "Tom", "Third", employees.RoleLabourer)

	_, err := havs.AddManualOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "Jane Doe")
	require.NoError(t, err)
	_, err = havs.AddEmployeeOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, op.ID)
	require.NoError(t, err)

	_, err = havs.AddEmployeeOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, third.ID)
	assert.ErrorIs(t, err, havs.ErrGangFull)
	_, err = havs.AddManualOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "Extra Person")
	assert.ErrorIs(t, err, havs.ErrGangFull)

	assert.EqualValues(t, 3, countRows(t, f.db, &havs.Member{}, "week_id = ?", f.week.ID))
}

func TestRemoveOperative(t *testing.T) {
	f := newFixture(t)
	m, err := havs.AddManualOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "Jane Doe")
	require.NoError(t, err)
	_, err = havs.SaveEntries(f.ctx, f.db, f.ganger.ID, f.week.ID, []havs.EntryInput{
		{MemberID: m.ID, EquipmentName: "Chainsaw", Minutes: havs.DayMinutes{Tue: 30}},
	})
	require.NoError(t, err)

	t.Run("ganger row is protected", func(t *testing.T) {
		err := havs.RemoveOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, f.gangerMemberID(t), true)
		assert.ErrorIs(t, err, havs.ErrGangerMember)
	})

	t.Run("requires confirmation", func(t *testing.T) {
		err := havs.RemoveOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, m.ID, false)
		assert.ErrorIs(t, err, havs.ErrConfirmationRequired)
		assert.EqualValues(t, 1, countRows(t, f.db, &havs.Entry{}, "member_id = ?", m.ID))
	})

	t.Run("unknown member", func(t *testing.T) {
		err := havs.RemoveOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "00000000-0000-0000-0000-000000000000", true)
		assert.ErrorIs(t, err, havs.ErrMemberNotFound)
	})

	t.Run("confirmed removal deletes exposure", func(t *testing.T) {
		require.NoError(t, havs.RemoveOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, m.ID, true))
		assert.EqualValues(t, 0, countRows(t, f.db, &havs.Entry{}, "member_id = ?", m.ID))
		assert.EqualValues(t, 1, countRows(t, f.db, &havs.Member{}, "week_id = ?", f.week.ID))
	})
}

func TestRoster_OtherGangersWeekIsNotFound(t *testing.T) {
	f := newFixture(t)
	other := testutil.SeedEmployee(t, f.db, "Gina", "Other", employees.RoleGanger)

	_, err := havs.AddManualOperative(f.ctx, f.db, other.ID, f.week.ID, "Jane Doe")
	assert.ErrorIs(t, err, havs.ErrNotFound)

	_, err = havs.LoadOwnedDetails(f.ctx, f.db, other.ID, f.week.ID)
	assert.ErrorIs(t, err, havs.ErrNotFound)
}

func TestAvailableOperatives(t *testing.T) {
	f := newFixture(t)
	op := testutil.SeedEmployee(t, f.db, "Olly", "Price", employees.RoleOperative)
	free := testutil.SeedEmployee(t, f.db, "Fay", "Free", employees.RoleLabourer)
	testutil.SeedEmployee(t, f.db, "Ada", "Admin", employees.RoleAdmin)

	_, err := havs.AddEmployeeOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, op.ID)
	require.NoError(t, err)

	got, err := havs.AvailableOperatives(f.ctx, f.db, f.ganger.ID, f.week.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, free.ID, got[0].ID)
}
