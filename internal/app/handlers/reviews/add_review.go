package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"globalstay/internal/app/commands"
	"globalstay/internal/app/outbox"
	"globalstay/internal/app/uow"
	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
)

const addReviewKey = "reviews.add"

var ErrUnitOfWorkRequired = errors.New("reviews: unit of work required")

type AddReviewCommand struct {
	CommandID string
	ListingID string
	AuthorID  string
	Rating    int
	Comment   string
}

func (c AddReviewCommand) Key() string { return addReviewKey }

type AddReviewResult struct {
	ReviewID    string  `json:"review_id"`
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

type AddReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Handle persists the review, links it to the listing, and recomputes the
// rating aggregate inside the same transaction. The review save and the
// listing aggregate update commit or fail together.
func (h *AddReviewHandler) Handle(ctx context.Context, cmd AddReviewCommand) (*AddReviewResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := h.now()

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}

	review, err := domainreviews.New(domainreviews.CreateParams{
		ID:        domainreviews.ReviewID(cmd.CommandID),
		ListingID: listing.ID,
		AuthorID:  cmd.AuthorID,
		Rating:    cmd.Rating,
		Comment:   cmd.Comment,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Reviews().Save(ctx, review); err != nil {
		return nil, err
	}

	listing.AddReviewRef(string(review.ID))
	if err := recalculateListingRating(ctx, unit, listing, now); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}

	pending := review.PendingEvents()
	review.ClearEvents()
	pending = append(pending, listing.PendingEvents()...)
	listing.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("review added",
			"review_id", review.ID,
			"listing_id", listing.ID,
			"rating", review.Rating,
			"avg_rating", listing.AvgRating,
		)
	}

	return &AddReviewResult{
		ReviewID:    string(review.ID),
		AvgRating:   listing.AvgRating,
		ReviewCount: listing.ReviewCount,
	}, nil
}

func (h *AddReviewHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *AddReviewHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[AddReviewCommand, *AddReviewResult] = (*AddReviewHandler)(nil)
