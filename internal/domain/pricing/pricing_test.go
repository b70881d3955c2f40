package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalstay/internal/domain/shared/daterange"
	"globalstay/internal/domain/shared/money"
)

func stay(t *testing.T, nights int) daterange.DateRange {
	t.Helper()
	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	dr, err := daterange.New(start, start.AddDate(0, 0, nights))
	require.NoError(t, err)
	return dr
}

func TestExpectedTotal(t *testing.T) {
	total, err := ExpectedTotal(money.Must(10000, "USD"), stay(t, 3))
	require.NoError(t, err)
	assert.Equal(t, money.Must(30000, "USD"), total)
}

func TestExpectedTotal_SingleNight(t *testing.T) {
	total, err := ExpectedTotal(money.Must(7550, "EUR"), stay(t, 1))
	require.NoError(t, err)
	assert.Equal(t, money.Must(7550, "EUR"), total)
}

func TestExpectedTotal_ZeroNights(t *testing.T) {
	_, err := ExpectedTotal(money.Must(10000, "USD"), daterange.DateRange{
		CheckIn:  time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrNoNights)
}

func TestVerify_ExactMatchOnly(t *testing.T) {
	expected := money.Must(30000, "USD")

	assert.True(t, Verify(money.Must(30000, "USD"), expected))
	assert.False(t, Verify(money.Must(29999, "USD"), expected))
	assert.False(t, Verify(money.Must(30001, "USD"), expected))
	assert.False(t, Verify(money.Must(30000, "EUR"), expected))
}
