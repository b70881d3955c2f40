package listings

import (
	"context"
	"log/slog"
	"time"

	"globalstay/internal/app/commands"
	"globalstay/internal/app/outbox"
	"globalstay/internal/app/uow"
	domainlistings "globalstay/internal/domain/listings"
)

const setListingStatusKey = "listings.status.set"

type SetListingStatusCommand struct {
	ListingID string
	OwnerID   string
	Status    string
}

func (c SetListingStatusCommand) Key() string { return setListingStatusKey }

type SetListingStatusResult struct {
	ListingID string `json:"listing_id"`
	Status    string `json:"status"`
}

type SetListingStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Handle pauses or resumes a listing. Pausing hides it from the catalog but
// leaves confirmed bookings untouched.
func (h *SetListingStatusHandler) Handle(ctx context.Context, cmd SetListingStatusCommand) (*SetListingStatusResult, error) {
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

	switch domainlistings.Status(cmd.Status) {
	case domainlistings.StatusUnavailable:
		err = listing.MarkUnavailable(now)
	case domainlistings.StatusAvailable:
		err = listing.MarkAvailable(now)
	default:
		err = domainlistings.ErrInvalidState
	}
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}

	pending := listing.PendingEvents()
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
		h.Logger.Info("listing status changed", "listing_id", listing.ID, "status", listing.Status)
	}

	return &SetListingStatusResult{ListingID: string(listing.ID), Status: string(listing.Status)}, nil
}

func (h *SetListingStatusHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *SetListingStatusHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[SetListingStatusCommand, *SetListingStatusResult] = (*SetListingStatusHandler)(nil)
