package reviews

import (
	"context"
	"log/slog"
	"time"

	"globalstay/internal/app/commands"
	"globalstay/internal/app/outbox"
	"globalstay/internal/app/uow"
	domainreviews "globalstay/internal/domain/reviews"
)

const deleteReviewKey = "reviews.delete"

type DeleteReviewCommand struct {
	ReviewID string
	AuthorID string
}

func (c DeleteReviewCommand) Key() string { return deleteReviewKey }

type DeleteReviewResult struct {
	ReviewID    string  `json:"review_id"`
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

type DeleteReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Handle removes a review after an author check and recomputes the listing
// aggregate from the remaining reviews. Deleting the last review resets the
// average to zero rather than leaving the previous value behind.
func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (*DeleteReviewResult, error) {
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

	review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return nil, err
	}
	if review.AuthorID != cmd.AuthorID {
		return nil, domainreviews.ErrNotAuthor
	}

	listing, err := unit.Listings().ByID(ctx, review.ListingID)
	if err != nil {
		return nil, err
	}

	if err := unit.Reviews().Delete(ctx, review.ID); err != nil {
		return nil, err
	}

	listing.RemoveReviewRef(string(review.ID))
	if err := recalculateListingRating(ctx, unit, listing, now); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}

	deleted := domainreviews.ReviewDeleted{ReviewID: review.ID, ListingID: review.ListingID, At: now}
	pending := append(listing.PendingEvents(), deleted)
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
		h.Logger.Info("review deleted",
			"review_id", review.ID,
			"listing_id", listing.ID,
			"avg_rating", listing.AvgRating,
			"review_count", listing.ReviewCount,
		)
	}

	return &DeleteReviewResult{
		ReviewID:    string(review.ID),
		AvgRating:   listing.AvgRating,
		ReviewCount: listing.ReviewCount,
	}, nil
}

func (h *DeleteReviewHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *DeleteReviewHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[DeleteReviewCommand, *DeleteReviewResult] = (*DeleteReviewHandler)(nil)
