package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneil-farm-bot/internal/domain"
)

func TestPeriodWindow(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		paris = time.FixedZone("CET", 3600)
	}
	wed := time.Date(2025, 6, 11, 15, 30, 0, 0, paris)

	start, end, err := PeriodToday.Window(wed)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, paris), start)
	assert.Equal(t, time.Date(2025, 6, 11, 23, 59, 59, 999_999_999, paris), end)

	start, end, err = PeriodWeek.Window(wed)
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, start.Weekday())
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, paris), start)
	assert.Equal(t, wed, end)

	sunday := time.Date(2025, 6, 8, 10, 0, 0, 0, paris)
	start, _, err = PeriodWeek.Window(sunday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, paris), start)

	start, _, err = PeriodMonth.Window(wed)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, paris), start)

	start, _, err = PeriodAll.Window(wed)
	require.NoError(t, err)
	assert.Equal(t, int64(0), start.Unix())

	_, _, err = Period("decade").Window(wed)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParsePeriod(t *testing.T) {
	tests := map[string]Period{
		"today":      PeriodToday,
		"Jour":       PeriodToday,
		"thisWeek":   PeriodWeek,
		"semaine":    PeriodWeek,
		"this_month": PeriodMonth,
		"allTime":    PeriodAll,
		"tout":       PeriodAll,
	}
	for in, want := range tests {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePeriod("yesterday")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
