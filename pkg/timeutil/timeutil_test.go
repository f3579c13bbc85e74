package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFor(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"first day of session", Date(2023, 9, 1), "2023/2024"},
		{"mid first semester", Date(2023, 11, 15), "2023/2024"},
		{"january rolls into same session", Date(2024, 1, 10), "2023/2024"},
		{"august is still previous session", Date(2024, 8, 31), "2023/2024"},
		{"september opens new session", Date(2024, 9, 1), "2024/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SessionFor(tt.date))
		})
	}
}

func TestSessionStartYear(t *testing.T) {
	year, err := SessionStartYear("2023/2024")
	require.NoError(t, err)
	assert.Equal(t, 2023, year)

	_, err = SessionStartYear("2023-2024")
	assert.Error(t, err)

	// end year must be start+1
	_, err = SessionStartYear("2023/2025")
	assert.Error(t, err)
}

func TestNextPreviousSession(t *testing.T) {
	next, err := NextSession("2023/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024/2025", next)

	prev, err := PreviousSession("2023/2024")
	require.NoError(t, err)
	assert.Equal(t, "2022/2023", prev)

	_, err = NextSession("garbage")
	assert.Error(t, err)
}

func TestSessionBounds(t *testing.T) {
	start, end, err := SessionBounds("2023/2024")
	require.NoError(t, err)

	assert.Equal(t, Date(2023, 9, 1), start)
	assert.True(t, end.Before(Date(2024, 9, 1)))
	assert.Equal(t, "2023/2024", SessionFor(end))
}

func TestCompareSessions(t *testing.T) {
	assert.Equal(t, -1, CompareSessions("2022/2023", "2023/2024"))
	assert.Equal(t, 1, CompareSessions("2024/2025", "2023/2024"))
	assert.Equal(t, 0, CompareSessions("2023/2024", "2023/2024"))
	assert.Equal(t, 1, CompareSessions("bad", "2023/2024"))
}

func TestStartEndOfDay(t *testing.T) {
	noon := time.Date(2024, 3, 14, 12, 30, 0, 0, CampusTZ)

	start := StartOfDay(noon)
	end := EndOfDay(noon)

	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 23, end.Hour())
	assert.True(t, IsSameDay(start, end))
	assert.False(t, IsSameDay(start, start.Add(24*time.Hour)))
}
