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

const listGuestBookingsKey = "guest.bookings.list"

type ListGuestBookingsQuery struct {
	GuestID string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

// Handle splits the guest's bookings into upcoming-or-active and past by
// checkout. Current stays sort by check-in ascending so the next trip comes
// first; past stays sort descending so the most recent one leads.
func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.GuestBookingCollection, error) {
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return dto.GuestBookingCollection{}, errors.New("guest id is required")
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.GuestBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByGuest(execCtx, guestID)
	if err != nil {
		return dto.GuestBookingCollection{}, err
	}

	now := h.now()
	listingCache := map[domainlistings.ListingID]*domainlistings.Listing{}

	current := make([]dto.BookingSummary, 0)
	past := make([]dto.BookingSummary, 0)
	for _, booking := range bookings {
		listing, ok := listingCache[booking.ListingID]
		if !ok {
			listing, err = unit.Listings().ByID(execCtx, booking.ListingID)
			if err != nil && !errors.Is(err, domainlistings.ErrNotFound) {
				return dto.GuestBookingCollection{}, err
			}
			listingCache[booking.ListingID] = listing
		}
		summary := dto.MapBookingSummary(booking, listing, now)
		if booking.Range.CheckOut.Before(now) {
			past = append(past, summary)
		} else {
			current = append(current, summary)
		}
	}

	sort.Slice(current, func(i, j int) bool {
		return current[i].CheckIn.Before(current[j].CheckIn)
	})
	sort.Slice(past, func(i, j int) bool {
		return past[i].CheckIn.After(past[j].CheckIn)
	})

	return dto.GuestBookingCollection{Current: current, Past: past}, nil
}

func (h *ListGuestBookingsHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ queries.Handler[ListGuestBookingsQuery, dto.GuestBookingCollection] = (*ListGuestBookingsHandler)(nil)
