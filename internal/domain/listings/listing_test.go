package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalstay/internal/domain/shared/money"
)

var now = time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)

func createParams() CreateParams {
	return CreateParams{
		ID:    "lst-1",
		Owner: "host-1",
		Title: "Sunny studio",
		Address: Address{
			Street:  "12 Canal St",
			City:    "Amsterdam",
			Country: "Netherlands",
		},
		Capacity:    Capacity{Guests: 2, Bedrooms: 1, Bathrooms: 1},
		NightlyRate: money.Must(9500, "EUR"),
		Now:         now,
	}
}

func TestNewListing(t *testing.T) {
	l, err := NewListing(createParams())
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, l.Status)
	assert.Zero(t, l.AvgRating)
	assert.Zero(t, l.ReviewCount)
}

func TestNewListing_Validation(t *testing.T) {
	p := createParams()
	p.Title = "  "
	_, err := NewListing(p)
	assert.ErrorIs(t, err, ErrTitleRequired)

	p = createParams()
	p.Owner = ""
	_, err = NewListing(p)
	assert.ErrorIs(t, err, ErrOwnerRequired)

	p = createParams()
	p.Capacity.Guests = 0
	_, err = NewListing(p)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	p = createParams()
	p.NightlyRate = money.Money{Amount: -1, Currency: "EUR"}
	_, err = NewListing(p)
	assert.ErrorIs(t, err, ErrNightlyRate)

	p = createParams()
	p.Address = Address{}
	_, err = NewListing(p)
	assert.ErrorIs(t, err, ErrAddressIncomplete)
}

func TestStatusTransitions(t *testing.T) {
	l, err := NewListing(createParams())
	require.NoError(t, err)

	require.NoError(t, l.MarkUnavailable(now))
	assert.Equal(t, StatusUnavailable, l.Status)
	assert.ErrorIs(t, l.MarkUnavailable(now), ErrInvalidState)

	require.NoError(t, l.MarkAvailable(now))
	assert.Equal(t, StatusAvailable, l.Status)
	assert.ErrorIs(t, l.MarkAvailable(now), ErrInvalidState)
}

func TestReviewRefs(t *testing.T) {
	l, err := NewListing(createParams())
	require.NoError(t, err)

	l.AddReviewRef("r-1")
	l.AddReviewRef("r-2")
	l.AddReviewRef("r-1")
	assert.Equal(t, []string{"r-1", "r-2"}, l.Reviews)

	l.RemoveReviewRef("r-1")
	assert.Equal(t, []string{"r-2"}, l.Reviews)

	l.RemoveReviewRef("missing")
	assert.Equal(t, []string{"r-2"}, l.Reviews)
}

func TestApplyReviewAggregate(t *testing.T) {
	l, err := NewListing(createParams())
	require.NoError(t, err)

	// Ratings 4, 5, 3 average to exactly 4.0.
	l.ApplyReviewAggregate(12, 3, now)
	assert.Equal(t, 4.0, l.AvgRating)
	assert.Equal(t, 3, l.ReviewCount)

	// Dropping the 3 leaves 4 and 5, averaging to 4.5.
	l.ApplyReviewAggregate(9, 2, now)
	assert.Equal(t, 4.5, l.AvgRating)
	assert.Equal(t, 2, l.ReviewCount)
}

func TestApplyReviewAggregate_RoundsToOneDecimal(t *testing.T) {
	l, err := NewListing(createParams())
	require.NoError(t, err)

	// 4+4+5 over 3 is 4.333..., which rounds to 4.3.
	l.ApplyReviewAggregate(13, 3, now)
	assert.Equal(t, 4.3, l.AvgRating)

	// 5+4 over 3 with a 1 is 10/3 = 3.333..., rounds to 3.3.
	l.ApplyReviewAggregate(10, 3, now)
	assert.Equal(t, 3.3, l.AvgRating)
}

func TestApplyReviewAggregate_EmptyResets(t *testing.T) {
	l, err := NewListing(createParams())
	require.NoError(t, err)

	l.ApplyReviewAggregate(12, 3, now)
	l.ApplyReviewAggregate(0, 0, now)
	assert.Zero(t, l.AvgRating)
	assert.Zero(t, l.ReviewCount)
}

func TestApplyReviewAggregate_Idempotent(t *testing.T) {
	l, err := NewListing(createParams())
	require.NoError(t, err)

	l.ApplyReviewAggregate(12, 3, now)
	first := l.AvgRating
	l.ApplyReviewAggregate(12, 3, now)
	assert.Equal(t, first, l.AvgRating)
	assert.Equal(t, 3, l.ReviewCount)
}
