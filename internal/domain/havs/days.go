package havs

import (
	"fmt"
	"strings"
)

// Day indexes the HAVS week, which runs Monday through to the Sunday it ends on.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayKeys = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Days lists the week in order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Day) Valid() bool { return d >= Monday && d <= Sunday }
func (d Day) Key() string { return dayKeys[d] }
func (d Day) String() string { return dayNames[d] }

func ParseDay(s string) (Day, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, k := range dayKeys {
		if s == k || s == strings.ToLower(dayNames[i]) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}

// DayMinutes is the per-day minute grid for one equipment row.
type DayMinutes struct {
	Mon int `gorm:"column:mon;not null;default:0" json:"mon"`
	Tue int `gorm:"column:tue;not null;default:0" json:"tue"`
	Wed int `gorm:"column:wed;not null;default:0" json:"wed"`
	Thu int `gorm:"column:thu;not null;default:0" json:"thu"`
	Fri int `gorm:"column:fri;not null;default:0" json:"fri"`
	Sat int `gorm:"column:sat;not null;default:0" json:"sat"`
	Sun int `gorm:"column:sun;not null;default:0" json:"sun"`
}

func (m *DayMinutes) slot(d Day) *int {
	switch d {
	case Monday:
		return &m.Mon
	case Tuesday:
		return &m.Tue
	case Wednesday:
		return &m.Wed
	case Thursday:
		return &m.Thu
	case Friday:
		return &m.Fri
	case Saturday:
		return &m.Sat
	default:
		return &m.Sun
	}
}

func (m DayMinutes) Get(d Day) int { return *m.slot(d) }
func (m *DayMinutes) Set(d Day, v int) { *m.slot(d) = v }

func (m DayMinutes) Total() int {
	return m.Mon + m.Tue + m.Wed + m.Thu + m.Fri + m.Sat + m.Sun
}

func (m DayMinutes) IsZero() bool { return m == DayMinutes{} }

// Validate checks every cell is a whole number of minutes within a day.
func (m DayMinutes) Validate() error {
	for _, d := range Days {
		if v := m.Get(d); v < 0 || v > MaxDayMinutes {
			return fmt.Errorf("%w: %s has %d minutes", ErrInvalidMinutes, d, v)
		}
	}
	return nil
}
