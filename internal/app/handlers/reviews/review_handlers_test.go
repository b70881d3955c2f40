package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
	"globalstay/internal/domain/shared/money"
	"globalstay/internal/infra/storage/memory"
)

var frozenNow = time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	factory  memory.Factory
	listings *memory.ListingRepository
	reviews  *memory.ReviewsRepository
	box      *memory.Outbox
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		listings: memory.NewListingRepository(),
		reviews:  memory.NewReviewsRepository(),
		box:      memory.NewOutbox(),
	}
	f.factory = memory.Factory{
		ListingsRepo:     f.listings,
		BookingsRepo:     memory.NewBookingRepository(),
		ReviewsRepo:      f.reviews,
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		UsersRepo:        memory.NewUserRepository(),
	}
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:    "lst-1",
		Owner: "host-1",
		Title: "Garden cottage",
		Address: domainlistings.Address{
			Street:  "3 Rose Lane",
			City:    "Lisbon",
			Country: "Portugal",
		},
		Capacity:    domainlistings.Capacity{Guests: 2, Bedrooms: 1, Bathrooms: 1},
		NightlyRate: money.Must(8000, "EUR"),
		Now:         frozenNow,
	})
	require.NoError(t, err)
	listing.ClearEvents()
	require.NoError(t, f.listings.Save(context.Background(), listing))
	return f
}

func (f fixture) addHandler() *AddReviewHandler {
	return &AddReviewHandler{
		UoWFactory: f.factory,
		Outbox:     f.box,
		Clock:      func() time.Time { return frozenNow },
	}
}

func (f fixture) deleteHandler() *DeleteReviewHandler {
	return &DeleteReviewHandler{
		UoWFactory: f.factory,
		Outbox:     f.box,
		Clock:      func() time.Time { return frozenNow },
	}
}

func (f fixture) addReview(t *testing.T, id string, rating int) *AddReviewResult {
	t.Helper()
	res, err := f.addHandler().Handle(context.Background(), AddReviewCommand{
		CommandID: id,
		ListingID: "lst-1",
		AuthorID:  "guest-" + id,
		Rating:    rating,
		Comment:   "stayed a week",
	})
	require.NoError(t, err)
	return res
}

func TestAddReview_RecomputesAggregate(t *testing.T) {
	f := newFixture(t)

	res := f.addReview(t, "r-1", 4)
	assert.Equal(t, 4.0, res.AvgRating)
	assert.Equal(t, 1, res.ReviewCount)

	res = f.addReview(t, "r-2", 5)
	assert.Equal(t, 4.5, res.AvgRating)

	res = f.addReview(t, "r-3", 3)
	assert.Equal(t, 4.0, res.AvgRating)
	assert.Equal(t, 3, res.ReviewCount)

	listing, err := f.listings.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, listing.AvgRating)
	assert.Equal(t, 3, listing.ReviewCount)
	assert.Len(t, listing.Reviews, 3)
}

func TestAddReview_InvalidRating(t *testing.T) {
	f := newFixture(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.addHandler().Handle(context.Background(), AddReviewCommand{
			CommandID: "r-bad",
			ListingID: "lst-1",
			AuthorID:  "guest-1",
			Rating:    rating,
		})
		assert.ErrorIs(t, err, domainreviews.ErrInvalidRating)
	}
}

func TestAddReview_UnknownListing(t *testing.T) {
	f := newFixture(t)

	_, err := f.addHandler().Handle(context.Background(), AddReviewCommand{
		CommandID: "r-1",
		ListingID: "missing",
		AuthorID:  "guest-1",
		Rating:    5,
	})
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestDeleteReview_RecomputesAggregate(t *testing.T) {
	f := newFixture(t)
	f.addReview(t, "r-1", 4)
	f.addReview(t, "r-2", 5)
	f.addReview(t, "r-3", 3)

	res, err := f.deleteHandler().Handle(context.Background(), DeleteReviewCommand{
		ReviewID: "r-3",
		AuthorID: "guest-r-3",
	})
	require.NoError(t, err)
	assert.Equal(t, 4.5, res.AvgRating)
	assert.Equal(t, 2, res.ReviewCount)

	_, err = f.reviews.ByID(context.Background(), "r-3")
	assert.ErrorIs(t, err, domainreviews.ErrNotFound)
}

func TestDeleteReview_LastReviewResetsAggregate(t *testing.T) {
	f := newFixture(t)
	f.addReview(t, "r-1", 5)

	res, err := f.deleteHandler().Handle(context.Background(), DeleteReviewCommand{
		ReviewID: "r-1",
		AuthorID: "guest-r-1",
	})
	require.NoError(t, err)
	assert.Zero(t, res.AvgRating)
	assert.Zero(t, res.ReviewCount)

	listing, err := f.listings.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Zero(t, listing.AvgRating)
	assert.Empty(t, listing.Reviews)
}

func TestDeleteReview_AuthorOnly(t *testing.T) {
	f := newFixture(t)
	f.addReview(t, "r-1", 5)

	_, err := f.deleteHandler().Handle(context.Background(), DeleteReviewCommand{
		ReviewID: "r-1",
		AuthorID: "someone-else",
	})
	assert.ErrorIs(t, err, domainreviews.ErrNotAuthor)

	// The review and the aggregate are untouched.
	listing, err := f.listings.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Equal(t, 1, listing.ReviewCount)
}

func TestDeleteReview_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.deleteHandler().Handle(context.Background(), DeleteReviewCommand{
		ReviewID: "missing",
		AuthorID: "guest-1",
	})
	assert.ErrorIs(t, err, domainreviews.ErrNotFound)
}

func TestListReviews(t *testing.T) {
	f := newFixture(t)
	f.addReview(t, "r-1", 4)
	f.addReview(t, "r-2", 5)
	f.addReview(t, "r-3", 3)

	list := &ListReviewsHandler{UoWFactory: f.factory}

	res, err := list.Handle(context.Background(), ListReviewsQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, 3, res.Total)

	paged, err := list.Handle(context.Background(), ListReviewsQuery{ListingID: "lst-1", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 1)
	assert.Equal(t, 3, paged.Total)
}
