package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"globalstay/internal/app/dto"
	listingsapp "globalstay/internal/app/handlers/listings"
	"globalstay/internal/app/queries"
)

type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ListingHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := listingsapp.SearchCatalogQuery{
		City:          c.Query("city"),
		Country:       c.Query("country"),
		LocationQuery: c.Query("q"),
		Amenities:     splitCSV(c.Query("amenities")),
		MinGuests:     parsePositiveInt(c.Query("guests"), 0),
		PriceMinCents: parsePositiveInt64(c.Query("price_min"), 0),
		PriceMaxCents: parsePositiveInt64(c.Query("price_max"), 0),
		PropertyTypes: splitCSV(c.Query("property_types")),
		Sort:          c.Query("sort"),
		Limit:         parsePositiveInt(c.Query("limit"), 0),
		Offset:        parsePositiveInt(c.Query("offset"), 0),
	}
	result, err := queries.Ask[listingsapp.SearchCatalogQuery, dto.CatalogPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err, "catalog search failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Detail(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	query := listingsapp.GetListingQuery{ListingID: listingID}
	result, err := queries.Ask[listingsapp.GetListingQuery, dto.ListingDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err, "listing detail failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) respondError(c *gin.Context, err error, msg string) {
	status := statusForError(err)
	if h.Logger != nil {
		h.Logger.Warn(msg, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func parsePositiveInt64(raw string, fallback int64) int64 {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

var _ ListingHTTP = ListingHandler{}
