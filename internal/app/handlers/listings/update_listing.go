package listings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"globalstay/internal/app/commands"
	"globalstay/internal/app/outbox"
	"globalstay/internal/app/uow"
	domainlistings "globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/money"
)

const updateListingKey = "listings.update"

var ErrNotOwner = errors.New("listings: requester does not own this listing")

type UpdateListingCommand struct {
	ListingID    string
	OwnerID      string
	Title        string
	Description  string
	TypeOfPlace  string
	PropertyType string
	Address      domainlistings.Address
	Amenities    []string
	Capacity     domainlistings.Capacity
	NightlyRate  money.Money
	ThumbnailURL string
	Photos       []string
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

type UpdateListingResult struct {
	ListingID string `json:"listing_id"`
}

type UpdateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Handle replaces the listing's editable attributes. Rate changes affect
// future admissions only; existing bookings keep the total they were
// admitted with.
func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*UpdateListingResult, error) {
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

	if err := listing.UpdateAttributes(domainlistings.UpdateParams{
		Title:        cmd.Title,
		Description:  cmd.Description,
		TypeOfPlace:  cmd.TypeOfPlace,
		PropertyType: cmd.PropertyType,
		Address:      cmd.Address,
		Amenities:    cmd.Amenities,
		Capacity:     cmd.Capacity,
		NightlyRate:  cmd.NightlyRate,
		ThumbnailURL: cmd.ThumbnailURL,
		Photos:       cmd.Photos,
		Now:          now,
	}); err != nil {
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
		h.Logger.Info("listing updated", "listing_id", listing.ID)
	}

	return &UpdateListingResult{ListingID: string(listing.ID)}, nil
}

func (h *UpdateListingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *UpdateListingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[UpdateListingCommand, *UpdateListingResult] = (*UpdateListingHandler)(nil)
