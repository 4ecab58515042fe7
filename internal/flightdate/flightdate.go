package flightdate

import (
	"math"
	"strings"
	"time"

	"github.com/dharmasatrya/flightchart/internal/models"
)

// Layout is the ISO calendar date layout used for every FlightDate.
const Layout = "2006-01-02"

const day = 24 * time.Hour

// Parse reads a FlightDate as midnight UTC.
func Parse(d models.FlightDate) (time.Time, error) {
	return time.Parse(Layout, string(d))
}

func Valid(d models.FlightDate) bool {
	_, err := Parse(d)
	return err == nil
}

func Format(t time.Time) models.FlightDate {
	return models.FlightDate(t.UTC().Format(Layout))
}

// AddDays shifts d by n calendar days. Dates are handled in UTC so that daylight saving
// transitions never move a date.
func AddDays(d models.FlightDate, n int) (models.FlightDate, error) {
	t, err := Parse(d)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// DaysBetween is the floor of the whole days from start to end.
func DaysBetween(start, end models.FlightDate) (int, error) {
	s, err := Parse(start)
	if err != nil {
		return 0, err
	}
	e, err := Parse(end)
	if err != nil {
		return 0, err
	}
	return int(math.Floor(float64(e.Sub(s)) / float64(day))), nil
}

// Range lists every date from start to end inclusive in ascending order. It is empty when
// either bound does not parse or start is after end.
func Range(start, end models.FlightDate) []models.FlightDate {
	s, err := Parse(start)
	if err != nil {
		return nil
	}
	e, err := Parse(end)
	if err != nil {
		return nil
	}

	var dates []models.FlightDate
	for t := s; !t.After(e); t = t.AddDate(0, 0, 1) {
		dates = append(dates, Format(t))
	}
	return dates
}

// SplitDateTime splits an ISO local date-time such as "2023-04-14T10:35:00" into its date
// and an HH:MM clock time. The time is empty when the input carries none.
func SplitDateTime(at string) (models.FlightDate, string) {
	date, clock, _ := strings.Cut(at, "T")
	return models.FlightDate(date), HourMinute(clock)
}

// HourMinute truncates "HH:MM:SS" to "HH:MM".
func HourMinute(clock string) string {
	if clock == "" {
		return ""
	}
	parts := strings.SplitN(clock, ":", 3)
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[0] + ":" + parts[1]
}

// HourOfDay converts the clock part of an ISO local date-time to fractional hours,
// e.g. "2023-04-14T10:30:00" is 10.5.
func HourOfDay(at string) (float64, bool) {
	formats := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, at); err == nil {
			return float64(t.Hour()) + float64(t.Minute())/60, true
		}
	}
	return 0, false
}

// ClockString renders fractional hours as HH:MM:00; 24 maps to the last second of the day.
func ClockString(hours float64) string {
	h := int(math.Floor(hours))
	if h >= 24 {
		return "23:59:59"
	}
	m := int(math.Floor((hours - float64(h)) * 60))
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format("15:04:05")
}
