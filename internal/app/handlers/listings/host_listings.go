package listings

import (
	"context"
	"errors"
	"strings"

	"globalstay/internal/app/dto"
	handlersupport "globalstay/internal/app/handlers/support"
	"globalstay/internal/app/queries"
	"globalstay/internal/app/uow"
	domainlistings "globalstay/internal/domain/listings"
)

const listHostListingsKey = "host.listings.list"

const hostListingsLimit = 60

type ListHostListingsQuery struct {
	OwnerID string
}

func (q ListHostListingsQuery) Key() string { return listHostListingsKey }

type ListHostListingsHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns all of the owner's listings regardless of status, so a
// paused listing still shows up on the host dashboard.
func (h *ListHostListingsHandler) Handle(ctx context.Context, q ListHostListingsQuery) (dto.CatalogPage, error) {
	ownerID := strings.TrimSpace(q.OwnerID)
	if ownerID == "" {
		return dto.CatalogPage{}, errors.New("owner id is required")
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CatalogPage{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainlistings.SearchParams{
		Owner: domainlistings.OwnerID(ownerID),
		Sort:  domainlistings.SortByNewest,
		Limit: hostListingsLimit,
	}.Normalized()

	result, err := unit.Listings().Search(execCtx, params)
	if err != nil {
		return dto.CatalogPage{}, err
	}

	items := make([]dto.CatalogItem, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, dto.MapCatalogItem(listing))
	}

	return dto.CatalogPage{Items: items, Total: result.Total, Limit: params.Limit}, nil
}

var _ queries.Handler[ListHostListingsQuery, dto.CatalogPage] = (*ListHostListingsHandler)(nil)
