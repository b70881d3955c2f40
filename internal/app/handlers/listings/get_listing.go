package listings

import (
	"context"
	"errors"
	"time"

	"globalstay/internal/app/dto"
	handlersupport "globalstay/internal/app/handlers/support"
	"globalstay/internal/app/queries"
	"globalstay/internal/app/uow"
	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
	domainuser "globalstay/internal/domain/user"
)

const getListingKey = "listings.get"

const detailReviewLimit = 50

type GetListingQuery struct {
	ListingID string
}

func (q GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
	Clock      func() time.Time
}

// Handle assembles the listing detail view: attributes, populated reviews,
// and the date windows occupied by confirmed bookings whose checkout is
// still ahead.
func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.ListingDetail, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.ListingDetail{}, err
	}

	var ownerName string
	owner, err := unit.Users().ByID(execCtx, domainuser.ID(listing.Owner))
	if err == nil {
		ownerName = owner.Name
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return dto.ListingDetail{}, err
	}

	ids := make([]domainreviews.ReviewID, 0, len(listing.Reviews))
	for _, id := range listing.Reviews {
		ids = append(ids, domainreviews.ReviewID(id))
	}
	if len(ids) > detailReviewLimit {
		ids = ids[len(ids)-detailReviewLimit:]
	}
	reviews, err := unit.Reviews().ByIDs(execCtx, ids)
	if err != nil {
		return dto.ListingDetail{}, err
	}

	confirmed, err := unit.Bookings().Confirmed(execCtx, listing.ID)
	if err != nil {
		return dto.ListingDetail{}, err
	}

	now := h.now()
	booked := make([]dto.BookedRange, 0, len(confirmed))
	for _, booking := range confirmed {
		if booking.EffectiveStatus(now) != domainbooking.StatusConfirmed {
			continue
		}
		booked = append(booked, dto.BookedRange{Start: booking.Range.CheckIn, End: booking.Range.CheckOut})
	}

	return dto.MapListingDetail(listing, ownerName, dto.MapReviews(reviews), booked), nil
}

func (h *GetListingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ queries.Handler[GetListingQuery, dto.ListingDetail] = (*GetListingHandler)(nil)
