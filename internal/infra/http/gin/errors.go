package ginserver

import (
	"errors"
	"net/http"

	bookingapp "globalstay/internal/app/handlers/booking"
	listingsapp "globalstay/internal/app/handlers/listings"
	"globalstay/internal/app/uow"
	domainavailability "globalstay/internal/domain/availability"
	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
	mongostore "globalstay/internal/infra/db/mongo"
	memorystore "globalstay/internal/infra/storage/memory"
)

// statusForError maps domain errors onto HTTP statuses. Ownership and
// authorship failures are 403, validation failures 400, date and version
// conflicts 409, missing aggregates 404. Version conflicts surface as 409
// because to the caller they mean the same thing as losing the dates.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domainbooking.ErrOwnListing),
		errors.Is(err, domainbooking.ErrNotBookingOwner),
		errors.Is(err, bookingapp.ErrNotListingOwner),
		errors.Is(err, listingsapp.ErrNotOwner),
		errors.Is(err, domainreviews.ErrNotAuthor):
		return http.StatusForbidden
	case errors.Is(err, domainbooking.ErrDatesRequired),
		errors.Is(err, domainbooking.ErrCheckInPast),
		errors.Is(err, domainbooking.ErrSameDayStay),
		errors.Is(err, domainbooking.ErrCheckOutNotAfter),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrGuestsExceedCapacity),
		errors.Is(err, domainbooking.ErrPriceMismatch),
		errors.Is(err, domainbooking.ErrStayStarted),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainreviews.ErrInvalidRating),
		errors.Is(err, domainlistings.ErrTitleRequired),
		errors.Is(err, domainlistings.ErrInvalidCapacity),
		errors.Is(err, domainlistings.ErrNightlyRate),
		errors.Is(err, domainlistings.ErrAddressIncomplete),
		errors.Is(err, domainlistings.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, domainbooking.ErrDatesUnavailable),
		errors.Is(err, domainbooking.ErrAlreadyCanceled),
		errors.Is(err, domainavailability.ErrRangeBlocked),
		errors.Is(err, mongostore.ErrConcurrentUpdate),
		errors.Is(err, memorystore.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainlistings.ErrNotFound),
		errors.Is(err, domainreviews.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, uow.ErrUnitOfWorkMissing):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
