package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"globalstay/internal/app/commands"
	bookingapp "globalstay/internal/app/handlers/booking"
	"globalstay/internal/domain/shared/money"
)

type BookingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type bookingRequest struct {
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	Guests      int       `json:"guests"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
}

func (r bookingRequest) total() money.Money {
	currency := r.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return money.Money{Amount: r.TotalAmount, Currency: currency}
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       uuid.NewString(),
		ListingID:       listingID,
		GuestID:         user.ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		SubmittedTotal:  req.total(),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err, "booking create failed")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Update(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	bookingID := c.Param("id")
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id is required"})
		return
	}
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.UpdateBookingCommand{
		BookingID:      bookingID,
		GuestID:        user.ID,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		Guests:         req.Guests,
		SubmittedTotal: req.total(),
	}
	result, err := commands.Dispatch[bookingapp.UpdateBookingCommand, *bookingapp.UpdateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err, "booking update failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	bookingID := c.Param("id")
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id is required"})
		return
	}
	cmd := bookingapp.CancelBookingCommand{BookingID: bookingID, GuestID: user.ID}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err, "booking cancel failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) respondError(c *gin.Context, err error, msg string) {
	status := statusForError(err)
	if h.Logger != nil {
		h.Logger.Warn(msg, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

var _ BookingHTTP = BookingHandler{}
