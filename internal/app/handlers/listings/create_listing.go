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
	domainuser "globalstay/internal/domain/user"
)

const createListingKey = "listings.create"

var ErrUnitOfWorkRequired = errors.New("listings: unit of work required")

type CreateListingCommand struct {
	CommandID    string
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

func (c CreateListingCommand) Key() string { return createListingKey }

type CreateListingResult struct {
	ListingID string `json:"listing_id"`
}

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Handle publishes a new listing and promotes the owner to the host role on
// their first listing.
func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*CreateListingResult, error) {
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

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(cmd.CommandID),
		Owner:        domainlistings.OwnerID(cmd.OwnerID),
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
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}

	owner, err := unit.Users().ByID(ctx, domainuser.ID(cmd.OwnerID))
	if err == nil && !owner.HasRole(domainuser.RoleHost) {
		owner.EnsureRole(domainuser.RoleHost, now)
		if err := unit.Users().Save(ctx, owner); err != nil {
			return nil, err
		}
	} else if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
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
		h.Logger.Info("listing created", "listing_id", listing.ID, "owner_id", listing.Owner)
	}

	return &CreateListingResult{ListingID: string(listing.ID)}, nil
}

func (h *CreateListingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CreateListingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CreateListingCommand, *CreateListingResult] = (*CreateListingHandler)(nil)
