package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/events"
)

var (
	ErrInvalidRating = errors.New("reviews: rating must be between 1 and 5")
	ErrNotAuthor     = errors.New("reviews: not the author of this review")
	ErrNotFound      = errors.New("reviews: not found")
)

type ReviewID string

// Review is immutable once created; the only lifecycle operation after
// creation is deletion, which triggers a listing aggregate recompute.
type Review struct {
	ID        ReviewID
	ListingID listings.ListingID
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	ByIDs(ctx context.Context, ids []ReviewID) ([]*Review, error)
	ListByListing(ctx context.Context, listingID listings.ListingID, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ReviewID) error
}

type CreateParams struct {
	ID        ReviewID
	ListingID listings.ListingID
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func New(params CreateParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if strings.TrimSpace(params.AuthorID) == "" {
		return nil, errors.New("reviews: author id required")
	}
	review := &Review{
		ID:        params.ID,
		ListingID: params.ListingID,
		AuthorID:  params.AuthorID,
		Rating:    params.Rating,
		Comment:   strings.TrimSpace(params.Comment),
		CreatedAt: params.CreatedAt.UTC(),
	}
	review.Record(ReviewAdded{ReviewID: review.ID, ListingID: review.ListingID, AuthorID: review.AuthorID, Rating: review.Rating, At: review.CreatedAt})
	return review, nil
}
