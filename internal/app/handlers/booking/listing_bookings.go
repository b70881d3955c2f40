package booking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"globalstay/internal/app/dto"
	handlersupport "globalstay/internal/app/handlers/support"
	"globalstay/internal/app/queries"
	"globalstay/internal/app/uow"
	domainlistings "globalstay/internal/domain/listings"
)

const listListingBookingsKey = "host.listing.bookings.list"

var ErrNotListingOwner = errors.New("booking: listing not owned by requester")

type ListListingBookingsQuery struct {
	ListingID string
	OwnerID   string
}

func (q ListListingBookingsQuery) Key() string { return listListingBookingsKey }

type ListListingBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

// Handle returns every booking on one of the host's listings, newest check-in
// first. Only the listing owner may call it.
func (h *ListListingBookingsHandler) Handle(ctx context.Context, q ListListingBookingsQuery) (dto.ListingBookingCollection, error) {
	ownerID := strings.TrimSpace(q.OwnerID)
	if ownerID == "" {
		return dto.ListingBookingCollection{}, errors.New("owner id is required")
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.ListingBookingCollection{}, err
	}
	if string(listing.Owner) != ownerID {
		return dto.ListingBookingCollection{}, ErrNotListingOwner
	}

	bookings, err := unit.Bookings().ListByListing(execCtx, listing.ID)
	if err != nil {
		return dto.ListingBookingCollection{}, err
	}

	now := h.now()
	items := make([]dto.BookingSummary, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, dto.MapBookingSummary(booking, listing, now))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CheckIn.After(items[j].CheckIn)
	})

	return dto.ListingBookingCollection{Items: items}, nil
}

func (h *ListListingBookingsHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ queries.Handler[ListListingBookingsQuery, dto.ListingBookingCollection] = (*ListListingBookingsHandler)(nil)
