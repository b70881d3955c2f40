package reviews

import (
	"context"

	"globalstay/internal/app/dto"
	handlersupport "globalstay/internal/app/handlers/support"
	"globalstay/internal/app/queries"
	"globalstay/internal/app/uow"
	domainlistings "globalstay/internal/domain/listings"
)

const listReviewsKey = "reviews.list"

const defaultReviewPageSize = 20

type ListReviewsQuery struct {
	ListingID string
	Limit     int
	Offset    int
}

func (q ListReviewsQuery) Key() string { return listReviewsKey }

type ListReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReviewsHandler) Handle(ctx context.Context, q ListReviewsQuery) (dto.ReviewCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultReviewPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	items, err := unit.Reviews().ListByListing(execCtx, listing.ID, limit, offset)
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	return dto.ReviewCollection{Items: dto.MapReviews(items), Total: listing.ReviewCount}, nil
}

var _ queries.Handler[ListReviewsQuery, dto.ReviewCollection] = (*ListReviewsHandler)(nil)
