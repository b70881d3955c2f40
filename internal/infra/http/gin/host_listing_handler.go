package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"globalstay/internal/app/commands"
	"globalstay/internal/app/dto"
	bookingapp "globalstay/internal/app/handlers/booking"
	listingsapp "globalstay/internal/app/handlers/listings"
	"globalstay/internal/app/queries"
	domainlistings "globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/money"
)

type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type listingPayload struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TypeOfPlace  string   `json:"type_of_place"`
	PropertyType string   `json:"property_type"`
	HouseNumber  string   `json:"house_number"`
	BuildingName string   `json:"building_name"`
	Street       string   `json:"street"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postal_code"`
	Country      string   `json:"country"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Amenities    []string `json:"amenities"`
	Guests       int      `json:"guests"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	NightlyRate  int64    `json:"nightly_rate"`
	Currency     string   `json:"currency"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Photos       []string `json:"photos"`
}

func (p listingPayload) address() domainlistings.Address {
	return domainlistings.Address{
		HouseNumber:  p.HouseNumber,
		BuildingName: p.BuildingName,
		Street:       p.Street,
		City:         p.City,
		State:        p.State,
		PostalCode:   p.PostalCode,
		Country:      p.Country,
		Lat:          p.Lat,
		Lon:          p.Lon,
	}
}

func (p listingPayload) capacity() domainlistings.Capacity {
	return domainlistings.Capacity{Guests: p.Guests, Bedrooms: p.Bedrooms, Bathrooms: p.Bathrooms}
}

func (p listingPayload) rate() money.Money {
	currency := p.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return money.Money{Amount: p.NightlyRate, Currency: currency}
}

func (h HostListingHandler) List(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := listingsapp.ListHostListingsQuery{OwnerID: user.ID}
	result, err := queries.Ask[listingsapp.ListHostListingsQuery, dto.CatalogPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err, "host listings failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req listingPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingsapp.CreateListingCommand{
		CommandID:    uuid.NewString(),
		OwnerID:      user.ID,
		Title:        req.Title,
		Description:  req.Description,
		TypeOfPlace:  req.TypeOfPlace,
		PropertyType: req.PropertyType,
		Address:      req.address(),
		Amenities:    req.Amenities,
		Capacity:     req.capacity(),
		NightlyRate:  req.rate(),
		ThumbnailURL: req.ThumbnailURL,
		Photos:       req.Photos,
	}
	result, err := commands.Dispatch[listingsapp.CreateListingCommand, *listingsapp.CreateListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err, "listing create failed")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) Update(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	listingID := c.Param("id")
	var req listingPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingsapp.UpdateListingCommand{
		ListingID:    listingID,
		OwnerID:      user.ID,
		Title:        req.Title,
		Description:  req.Description,
		TypeOfPlace:  req.TypeOfPlace,
		PropertyType: req.PropertyType,
		Address:      req.address(),
		Amenities:    req.Amenities,
		Capacity:     req.capacity(),
		NightlyRate:  req.rate(),
		ThumbnailURL: req.ThumbnailURL,
		Photos:       req.Photos,
	}
	result, err := commands.Dispatch[listingsapp.UpdateListingCommand, *listingsapp.UpdateListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err, "listing update failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Delete(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := listingsapp.DeleteListingCommand{ListingID: c.Param("id"), OwnerID: user.ID}
	result, err := commands.Dispatch[listingsapp.DeleteListingCommand, *listingsapp.DeleteListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err, "listing delete failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h HostListingHandler) SetStatus(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingsapp.SetListingStatusCommand{
		ListingID: c.Param("id"),
		OwnerID:   user.ID,
		Status:    req.Status,
	}
	result, err := commands.Dispatch[listingsapp.SetListingStatusCommand, *listingsapp.SetListingStatusResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err, "listing status change failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Bookings(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := bookingapp.ListListingBookingsQuery{ListingID: c.Param("id"), OwnerID: user.ID}
	result, err := queries.Ask[bookingapp.ListListingBookingsQuery, dto.ListingBookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err, "host bookings failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) respondError(c *gin.Context, err error, msg string) {
	status := statusForError(err)
	if h.Logger != nil {
		h.Logger.Warn(msg, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

var _ HostListingHTTP = HostListingHandler{}
