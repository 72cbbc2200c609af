package havs

import "time"

// EffectiveWeekEnding maps a reference date to the Sunday that identifies its
// HAVS week. Sundays map to themselves. Mondays and Tuesdays still belong to the
// week that has just ended, so they map back to the previous Sunday. Wednesday
// to Saturday map forward to the coming Sunday.
//
// The result is midnight in ref's location. Server validation and the client
// fallback both call this function and share one set of test vectors.
func EffectiveWeekEnding(ref time.Time) time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	wd := int(day.Weekday())
	switch {
	case wd == 0:
		return day
	case wd <= 2:
		return day.AddDate(0, 0, -wd)
	default:
		return day.AddDate(0, 0, 7-wd)
	}
}

// WeekEndingFor applies EffectiveWeekEnding to a calendar date.
func WeekEndingFor(d Date) Date {
	return NewDate(EffectiveWeekEnding(d.Time()))
}

func IsWeekEnding(d Date) bool {
	return d != "" && d.Weekday() == time.Sunday
}
