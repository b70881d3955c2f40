package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"globalstay/internal/app/commands"
	"globalstay/internal/app/dto"
	reviewsapp "globalstay/internal/app/handlers/reviews"
	"globalstay/internal/app/queries"
)

type ReviewsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type addReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h ReviewsHandler) Add(c *gin.Context) {
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
	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reviewsapp.AddReviewCommand{
		CommandID: uuid.NewString(),
		ListingID: listingID,
		AuthorID:  user.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	result, err := commands.Dispatch[reviewsapp.AddReviewCommand, *reviewsapp.AddReviewResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err, "review add failed")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewsHandler) Delete(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := reviewsapp.DeleteReviewCommand{ReviewID: c.Param("id"), AuthorID: user.ID}
	result, err := commands.Dispatch[reviewsapp.DeleteReviewCommand, *reviewsapp.DeleteReviewResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err, "review delete failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewsHandler) ListByListing(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	query := reviewsapp.ListReviewsQuery{
		ListingID: listingID,
		Limit:     parsePositiveInt(c.Query("limit"), 20),
		Offset:    parsePositiveInt(c.Query("offset"), 0),
	}
	result, err := queries.Ask[reviewsapp.ListReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err, "review list failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewsHandler) respondError(c *gin.Context, err error, msg string) {
	status := statusForError(err)
	if h.Logger != nil {
		h.Logger.Warn(msg, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

var _ ReviewsHTTP = ReviewsHandler{}
