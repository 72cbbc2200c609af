package havs_test

import (
	"errors"
	"testing"

	"fieldops-app/internal/domain/employees"
	"fieldops-app/internal/domain/havs"
	"fieldops-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStartWeek_GangerOnly(t *testing.T) {
	f := newFixture(t)

	require.Len(t, f.week.Members, 1)
	assert.Equal(t, havs.PersonGanger, f.week.Members[0].PersonType)
	assert.Equal(t, "Gary Hughes", f.week.Members[0].Name)
	assert.Equal(t, havs.StatusDraft, f.week.Status)
	assert.Equal(t, havs.Date("2024-06-09"), f.week.WeekEnding)
	assert.Equal(t, 0, f.week.TotalMinutes)
	assert.Equal(t, 0, f.week.RevisionNumber)
}

func TestStartWeek_ExistingWeekConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := havs.StartWeek(f.ctx, f.db, havs.StartWeekInput{GangerID: f.ganger.ID, WeekEnding: "2024-06-09"})
	assert.ErrorIs(t, err, havs.ErrWeekExists)

	assert.EqualValues(t, 1, countRows(t, f.db, &havs.Week{}, ""))
	assert.EqualValues(t, 1, countRows(t, f.db, &havs.Member{}, ""))
}

func TestStartWeek_Validation(t *testing.T) {
	f := newFixture(t)
	op := testutil.SeedEmployee(t, f.db, "Olly", "Price", employees.RoleOperative)

	_, err := havs.StartWeek(f.ctx, f.db, havs.StartWeekInput{GangerID: f.ganger.ID, WeekEnding: "2024-06-12"})
	assert.ErrorIs(t, err, havs.ErrInvalidWeekEnding)

	_, err = havs.StartWeek(f.ctx, f.db, havs.StartWeekInput{GangerID: op.ID, WeekEnding: "2024-06-16"})
	assert.ErrorIs(t, err, havs.ErrNotGanger)

	_, err = havs.StartWeek(f.ctx, f.db, havs.StartWeekInput{GangerID: 4242, WeekEnding: "2024-06-16"})
	assert.ErrorIs(t, err, havs.ErrNotGanger)
}

func TestStartWeek_CarriesRosterButNotExposure(t *testing.T) {
	f := newFixture(t)
	op := testutil.SeedEmployee(t, f.db, "Olly", "Price", employees.RoleOperative)

	olly, err := havs.AddEmployeeOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, op.ID)
	require.NoError(t, err)
	jane, err := havs.AddManualOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "Jane Doe")
	require.NoError(t, err)
	_, err = havs.SaveEntries(f.ctx, f.db, f.ganger.ID, f.week.ID, []havs.EntryInput{
		{MemberID: olly.ID, EquipmentName: "Chainsaw", Minutes: havs.DayMinutes{Mon: 30}},
	})
	require.NoError(t, err)

	next, err := havs.StartWeek(f.ctx, f.db, havs.StartWeekInput{
		GangerID:           f.ganger.ID,
		WeekEnding:         "2024-06-16",
		CarryOverMemberIDs: []string{olly.ID, jane.ID, olly.ID, f.gangerMemberID(t)},
	})
	require.NoError(t, err)
	require.Len(t, next.Members, 3)
	assert.Equal(t, 0, next.TotalMinutes)

	names := map[string]string{}
	for _, m := range next.Members {
		names[m.Name] = m.Source
		assert.Empty(t, m.Entries)
	}
	assert.Equal(t, map[string]string{
		"Gary Hughes": "employee",
		"Olly Price":  "employee",
		"Jane Doe":    "manual",
	}, names)

	// the previous week is untouched
	prev, err := havs.LoadOwnedDetails(f.ctx, f.db, f.ganger.ID, f.week.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, prev.TotalMinutes)
}

func TestStartWeek_CarryOverMustBeOwnMembers(t *testing.T) {
	f := newFixture(t)
	jane, err := havs.AddManualOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "Jane Doe")
	require.NoError(t, err)

	other := testutil.SeedEmployee(t, f.db, "Gina", "Other", employees.RoleGanger)
	_, err = havs.StartWeek(f.ctx, f.db, havs.StartWeekInput{
		GangerID:           other.ID,
		WeekEnding:         "2024-06-16",
		CarryOverMemberIDs: []string{jane.ID},
	})
	assert.ErrorIs(t, err, havs.ErrMemberNotFound)
	assert.EqualValues(t, 0, countRows(t, f.db, &havs.Week{}, "ganger_id = ?", other.ID))
}

func TestStartWeek_MemberFailureRemovesWeek(t *testing.T) {
	f := newFixture(t)
	jane, err := havs.AddManualOperative(f.ctx, f.db, f.ganger.ID, f.week.ID, "Jane Doe")
	require.NoError(t, err)

	const cb = "test:fail_operative_insert"
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register(cb, func(tx *gorm.DB) {
		if m, ok := tx.Statement.Dest.(*havs.Member); ok && m.PersonType == havs.PersonOperative {
			tx.AddError(errors.New("insert refused"))
		}
	}))
	t.Cleanup(func() { _ = f.db.Callback().Create().Remove(cb) })

	membersBefore := countRows(t, f.db, &havs.Member{}, "")

	_, err = havs.StartWeek(f.ctx, f.db, havs.StartWeekInput{
		GangerID:           f.ganger.ID,
		WeekEnding:         "2024-06-16",
		CarryOverMemberIDs: []string{jane.ID},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert refused")

	assert.EqualValues(t, 0, countRows(t, f.db, &havs.Week{}, "week_ending = ?", havs.Date("2024-06-16")))
	assert.Equal(t, membersBefore, countRows(t, f.db, &havs.Member{}, ""), "no orphaned member rows")
}
