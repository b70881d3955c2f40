package listings

import (
	"context"
	"log/slog"
	"time"

	"globalstay/internal/app/commands"
	"globalstay/internal/app/outbox"
	"globalstay/internal/app/uow"
	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
	"globalstay/internal/domain/shared/events"
)

const deleteListingKey = "listings.delete"

type DeleteListingCommand struct {
	ListingID string
	OwnerID   string
}

func (c DeleteListingCommand) Key() string { return deleteListingKey }

type DeleteListingResult struct {
	ListingID string `json:"listing_id"`
}

type DeleteListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Handle removes the listing and cascades to its reviews, which have no
// reason to outlive the listing they describe. Bookings are kept as
// historical records.
func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (*DeleteListingResult, error) {
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
	if string(listing.Owner) != cmd.OwnerID {
		return nil, ErrNotOwner
	}

	for _, reviewID := range listing.Reviews {
		if err := unit.Reviews().Delete(ctx, domainreviews.ReviewID(reviewID)); err != nil {
			return nil, err
		}
	}

	if err := unit.Listings().Delete(ctx, listing.ID); err != nil {
		return nil, err
	}

	deleted := domainlistings.ListingDeletedEvent{ListingID: listing.ID, At: now}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), []events.DomainEvent{deleted}); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("listing deleted", "listing_id", listing.ID, "reviews_removed", len(listing.Reviews))
	}

	return &DeleteListingResult{ListingID: string(listing.ID)}, nil
}

func (h *DeleteListingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *DeleteListingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[DeleteListingCommand, *DeleteListingResult] = (*DeleteListingHandler)(nil)
