package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_RejectsInvertedRange(t *testing.T) {
	_, err := New(day(10), day(5))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(day(10), day(10))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestNew_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	dr, err := New(time.Date(2026, time.March, 10, 12, 0, 0, 0, loc), day(15))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, dr.CheckIn.Location())
}

func TestOverlaps(t *testing.T) {
	base, err := New(day(10), day(15))
	require.NoError(t, err)

	cases := []struct {
		name     string
		in, out  int
		overlaps bool
	}{
		{"identical", 10, 15, true},
		{"contained", 11, 14, true},
		{"contains", 9, 16, true},
		{"overlaps start", 8, 11, true},
		{"overlaps end", 14, 17, true},
		{"single shared night", 14, 15, true},
		{"before", 5, 9, false},
		{"after", 16, 20, false},
		{"back to back before", 5, 10, false},
		{"back to back after", 15, 20, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(day(tc.in), day(tc.out))
			require.NoError(t, err)
			assert.Equal(t, tc.overlaps, base.Overlaps(other))
			assert.Equal(t, tc.overlaps, other.Overlaps(base))
		})
	}
}

func TestNights(t *testing.T) {
	dr, err := New(day(10), day(13))
	require.NoError(t, err)
	assert.Equal(t, 3, dr.Nights())

	one, err := New(day(10), day(11))
	require.NoError(t, err)
	assert.Equal(t, 1, one.Nights())
}

func TestNights_PartialDayRoundsUp(t *testing.T) {
	dr, err := New(day(10), day(12).Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, dr.Nights())
}

func TestTruncateToDay(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	in := time.Date(2026, time.March, 10, 23, 59, 0, 0, loc)
	got := TruncateToDay(in)
	assert.Equal(t, time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), got)
}

func TestContainsDate(t *testing.T) {
	dr, err := New(day(10), day(15))
	require.NoError(t, err)

	assert.True(t, dr.ContainsDate(day(10)))
	assert.True(t, dr.ContainsDate(day(14)))
	assert.False(t, dr.ContainsDate(day(15)))
	assert.False(t, dr.ContainsDate(day(9)))
}
