package ginserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	bookingapp "globalstay/internal/app/handlers/booking"
	listingsapp "globalstay/internal/app/handlers/listings"
	"globalstay/internal/app/uow"
	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
	memorystore "globalstay/internal/infra/storage/memory"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domainbooking.ErrOwnListing, http.StatusForbidden},
		{domainbooking.ErrNotBookingOwner, http.StatusForbidden},
		{bookingapp.ErrNotListingOwner, http.StatusForbidden},
		{listingsapp.ErrNotOwner, http.StatusForbidden},
		{domainreviews.ErrNotAuthor, http.StatusForbidden},
		{domainbooking.ErrCheckInPast, http.StatusBadRequest},
		{domainbooking.ErrSameDayStay, http.StatusBadRequest},
		{domainbooking.ErrGuestsExceedCapacity, http.StatusBadRequest},
		{domainbooking.ErrPriceMismatch, http.StatusBadRequest},
		{domainbooking.ErrStayStarted, http.StatusBadRequest},
		{domainreviews.ErrInvalidRating, http.StatusBadRequest},
		{domainbooking.ErrDatesUnavailable, http.StatusConflict},
		{domainbooking.ErrAlreadyCanceled, http.StatusConflict},
		{memorystore.ErrConcurrentUpdate, http.StatusConflict},
		{domainbooking.ErrBookingNotFound, http.StatusNotFound},
		{domainlistings.ErrNotFound, http.StatusNotFound},
		{uow.ErrUnitOfWorkMissing, http.StatusServiceUnavailable},
		{errors.New("something else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.status, statusForError(tc.err))
		})
	}
}

func TestStatusForError_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("request booking: %w", domainbooking.ErrDatesUnavailable)
	assert.Equal(t, http.StatusConflict, statusForError(wrapped))
}
