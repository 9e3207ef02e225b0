// FilePath: internal/timeseries/labels.go
package timeseries

import "time"

// Chart labels stay in Indonesian; they are part of the response contract
// with the existing frontend.

// WeekdayNameID returns the Indonesian weekday name.
func WeekdayNameID(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "Senin"
	case time.Tuesday:
		return "Selasa"
	case time.Wednesday:
		return "Rabu"
	case time.Thursday:
		return "Kamis"
	case time.Friday:
		return "Jumat"
	case time.Saturday:
		return "Sabtu"
	default:
		return "Minggu"
	}
}

// MonthAbbrevID returns the Indonesian month abbreviation.
func MonthAbbrevID(m time.Month) string {
	switch m {
	case time.January:
		return "Jan"
	case time.February:
		return "Feb"
	case time.March:
		return "Mar"
	case time.April:
		return "Apr"
	case time.May:
		return "Mei"
	case time.June:
		return "Jun"
	case time.July:
		return "Jul"
	case time.August:
		return "Agt"
	case time.September:
		return "Sep"
	case time.October:
		return "Okt"
	case time.November:
		return "Nov"
	default:
		return "Des"
	}
}

func dayBucketLabels() []string {
	return []string{"00:00", "04:00", "08:00", "12:00", "16:00", "20:00"}
}

func monthSegmentLabels() []string {
	return []string{"Minggu 1", "Minggu 2", "Minggu 3", "Minggu 4"}
}
