package flightdate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightchart/internal/models"
)

func TestAddDays(t *testing.T) {
	cases := []struct {
		in   models.FlightDate
		n    int
		want models.FlightDate
	}{
		{"2023-04-14", 3, "2023-04-17"},
		{"2023-04-30", 1, "2023-05-01"},
		{"2023-12-31", 1, "2024-01-01"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2023-03-25", 2, "2023-03-27"},
		{"2023-04-14", 0, "2023-04-14"},
		{"2023-04-14", -14, "2023-03-31"},
	}
	for _, c := range cases {
		got, err := AddDays(c.in, c.n)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "AddDays(%s, %d)", c.in, c.n)
	}

	_, err := AddDays("14/04/2023", 1)
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	n, err := DaysBetween("2023-04-13", "2023-04-16")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = DaysBetween("2023-03-20", "2023-04-02")
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	n, err = DaysBetween("2023-04-16", "2023-04-13")
	require.NoError(t, err)
	assert.Equal(t, -3, n)

	_, err = DaysBetween("bad", "2023-04-13")
	assert.Error(t, err)
}

func TestRange(t *testing.T) {
	assert.Equal(t,
		[]models.FlightDate{"2023-04-29", "2023-04-30", "2023-05-01", "2023-05-02"},
		Range("2023-04-29", "2023-05-02"))
	assert.Equal(t, []models.FlightDate{"2023-04-13"}, Range("2023-04-13", "2023-04-13"))
	assert.Empty(t, Range("2023-04-14", "2023-04-13"))
	assert.Empty(t, Range("2023-04-14", ""))
	assert.Empty(t, Range("", "2023-04-14"))
}

func TestSplitDateTime(t *testing.T) {
	date, clock := SplitDateTime("2023-04-14T10:35:12")
	assert.Equal(t, models.FlightDate("2023-04-14"), date)
	assert.Equal(t, "10:35", clock)

	date, clock = SplitDateTime("2023-04-14")
	assert.Equal(t, models.FlightDate("2023-04-14"), date)
	assert.Equal(t, "", clock)

	_, clock = SplitDateTime("2023-04-14T07")
	assert.Equal(t, "07", clock)
}

func TestHourOfDay(t *testing.T) {
	h, ok := HourOfDay("2023-04-14T10:30:00")
	require.True(t, ok)
	assert.InDelta(t, 10.5, h, 1e-9)

	h, ok = HourOfDay("2023-04-14T23:45")
	require.True(t, ok)
	assert.InDelta(t, 23.75, h, 1e-9)

	_, ok = HourOfDay("not a time")
	assert.False(t, ok)
}

func TestClockString(t *testing.T) {
	assert.Equal(t, "00:00:00", ClockString(0))
	assert.Equal(t, "12:00:00", ClockString(12))
	assert.Equal(t, "07:30:00", ClockString(7.5))
	assert.Equal(t, "23:59:59", ClockString(24))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("2023-04-13"))
	assert.False(t, Valid("2023-13-01"))
	assert.False(t, Valid("2023-4-1"))
	assert.False(t, Valid(""))
}
