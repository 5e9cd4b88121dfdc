package temporal

import "time"

// Facts is the canonical set of temporal facts derived from one instant.
// Day numbering follows the ISO week convention (Monday=1, Sunday=7).
type Facts struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	DayName string `json:"day_of_week_name"`
	DayNum  int    `json:"day_of_week_num"`
	Minutes int    `json:"minutes"`
}

// Derive computes the fact set for an instant. Seconds and sub-second
// components are truncated, not rounded.
func Derive(t time.Time) Facts {
	day := int(t.Weekday())
	if day == 0 {
		day = 7
	}
	return Facts{
		Date:    t.Format("2006-01-02"),
		Time:    t.Format("15:04"),
		DayName: t.Weekday().String(),
		DayNum:  day,
		Minutes: t.Hour()*60 + t.Minute(),
	}
}
