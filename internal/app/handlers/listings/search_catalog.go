package listings

import (
	"context"

	"globalstay/internal/app/dto"
	handlersupport "globalstay/internal/app/handlers/support"
	"globalstay/internal/app/queries"
	"globalstay/internal/app/uow"
	domainlistings "globalstay/internal/domain/listings"
)

const searchCatalogKey = "listings.catalog.search"

type SearchCatalogQuery struct {
	City          string
	Country       string
	LocationQuery string
	Amenities     []string
	MinGuests     int
	PriceMinCents int64
	PriceMaxCents int64
	PropertyTypes []string
	Sort          string
	Limit         int
	Offset        int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle runs the public catalog search. Only listings in the available
// status appear here; paused listings remain visible to their owner through
// the host view.
func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.CatalogPage, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CatalogPage{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainlistings.SearchParams{
		City:          q.City,
		Country:       q.Country,
		LocationQuery: q.LocationQuery,
		Amenities:     q.Amenities,
		MinGuests:     q.MinGuests,
		PriceMinCents: q.PriceMinCents,
		PriceMaxCents: q.PriceMaxCents,
		PropertyTypes: q.PropertyTypes,
		Sort:          domainlistings.CatalogSort(q.Sort),
		Limit:         q.Limit,
		Offset:        q.Offset,
		OnlyAvailable: true,
	}.Normalized()

	result, err := unit.Listings().Search(execCtx, params)
	if err != nil {
		return dto.CatalogPage{}, err
	}

	items := make([]dto.CatalogItem, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, dto.MapCatalogItem(listing))
	}

	return dto.CatalogPage{
		Items:  items,
		Total:  result.Total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

var _ queries.Handler[SearchCatalogQuery, dto.CatalogPage] = (*SearchCatalogHandler)(nil)
