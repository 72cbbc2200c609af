package havs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayMinutes_SetGetTotal(t *testing.T) {
	var m DayMinutes
	m.Set(Monday, 45)
	m.Set(Sunday, 15)

	assert.Equal(t, 45, m.Get(Monday))
	assert.Equal(t, 0, m.Get(Wednesday))
	assert.Equal(t, 60, m.Total())
	assert.False(t, m.IsZero())
	assert.True(t, DayMinutes{}.IsZero())
}

func TestDayMinutes_Validate(t *testing.T) {
	require.NoError(t, DayMinutes{Mon: 0, Tue: MaxDayMinutes}.Validate())

	err := DayMinutes{Wed: -1}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidMinutes))

	err = DayMinutes{Fri: MaxDayMinutes + 1}.Validate()
	assert.ErrorIs(t, err, ErrInvalidMinutes)
	assert.Contains(t, err.Error(), "Friday")
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("Tue")
	require.NoError(t, err)
	assert.Equal(t, Tuesday, d)

	d, err = ParseDay("saturday")
	require.NoError(t, err)
	assert.Equal(t, Saturday, d)

	_, err = ParseDay("someday")
	assert.Error(t, err)
}

func TestDate_On(t *testing.T) {
	we := Date("2024-06-09")
	assert.Equal(t, Date("2024-06-03"), we.On(Monday))
	assert.Equal(t, Date("2024-06-09"), we.On(Sunday))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Date("2024-06-09"), d)

	require.NoError(t, d.Scan("2024-06-16T00:00:00Z"))
	assert.Equal(t, Date("2024-06-16"), d)

	require.NoError(t, d.Scan([]byte("2024-06-23")))
	assert.Equal(t, Date("2024-06-23"), d)

	require.NoError(t, d.Scan(nil))
	assert.Equal(t, Date(""), d)

	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("June"))
}

func TestLookupEquipment(t *testing.T) {
	eq, err := LookupEquipment("  hydraulic breaker ")
	require.NoError(t, err)
	assert.Equal(t, "Hydraulic Breaker", eq.Name)
	assert.Equal(t, CategoryCivils, eq.Category)

	_, err = LookupEquipment("Jackhammer 9000")
	assert.ErrorIs(t, err, ErrUnknownEquipment)
}

func TestCatalog_IsACopy(t *testing.T) {
	c := Catalog()
	require.Len(t, c, 4)
	c[0].Items[0].Name = "changed"
	assert.Equal(t, "Hydraulic Breaker", Catalog()[0].Items[0].Name)
}
