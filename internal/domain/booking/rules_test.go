package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/daterange"
	"globalstay/internal/domain/shared/money"
)

var testNow = time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

func date(d int) time.Time {
	return time.Date(2026, time.May, d, 0, 0, 0, 0, time.UTC)
}

func testListing() *listings.Listing {
	return &listings.Listing{
		ID:          "lst-1",
		Owner:       "host-1",
		Title:       "Loft near the river",
		Capacity:    listings.Capacity{Guests: 4, Bedrooms: 2, Bathrooms: 1},
		NightlyRate: money.Must(10000, "USD"),
		Status:      listings.StatusAvailable,
	}
}

func confirmed(id string, in, out int) *Booking {
	dr, _ := daterange.New(date(in), date(out))
	return &Booking{ID: BookingID(id), ListingID: "lst-1", GuestID: "other", Range: dr, Guests: 2, Status: StatusConfirmed}
}

func admission(overrides func(*AdmissionRequest)) AdmissionRequest {
	req := AdmissionRequest{
		Listing:        testListing(),
		GuestID:        "guest-1",
		CheckIn:        date(10),
		CheckOut:       date(13),
		Guests:         2,
		SubmittedTotal: money.Must(30000, "USD"),
		Now:            testNow,
	}
	if overrides != nil {
		overrides(&req)
	}
	return req
}

func TestAdmit_Accepts(t *testing.T) {
	adm, err := Admit(admission(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, adm.Guests)
	assert.Equal(t, money.Must(30000, "USD"), adm.Total)
	assert.Equal(t, date(10), adm.Range.CheckIn)
	assert.Equal(t, date(13), adm.Range.CheckOut)
}

func TestAdmit_MissingListing(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) { r.Listing = nil }))
	assert.ErrorIs(t, err, listings.ErrNotFound)
}

func TestAdmit_OwnListing(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) { r.GuestID = "host-1" }))
	assert.ErrorIs(t, err, ErrOwnListing)
}

func TestAdmit_OwnerCheckPrecedesDateChecks(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.GuestID = "host-1"
		r.CheckIn = time.Time{}
		r.CheckOut = time.Time{}
	}))
	assert.ErrorIs(t, err, ErrOwnListing)
}

func TestAdmit_DatesRequired(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) { r.CheckOut = time.Time{} }))
	assert.ErrorIs(t, err, ErrDatesRequired)
}

func TestAdmit_CheckInPast(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.CheckIn = date(1).AddDate(0, 0, -5)
		r.CheckOut = date(13)
	}))
	assert.ErrorIs(t, err, ErrCheckInPast)
}

func TestAdmit_CheckInTodayAllowed(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.CheckIn = date(1)
		r.CheckOut = date(4)
	}))
	assert.NoError(t, err)
}

func TestAdmit_SameDayStay(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.CheckOut = r.CheckIn.Add(6 * time.Hour)
	}))
	assert.ErrorIs(t, err, ErrSameDayStay)
}

func TestAdmit_CheckOutBeforeCheckIn(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.CheckIn = date(13)
		r.CheckOut = date(10)
	}))
	assert.ErrorIs(t, err, ErrCheckOutNotAfter)
}

func TestAdmit_DateOnlyComparison(t *testing.T) {
	// Different clock times on the same calendar days must not change the
	// outcome or the computed night count.
	adm, err := Admit(admission(func(r *AdmissionRequest) {
		r.CheckIn = date(10).Add(23 * time.Hour)
		r.CheckOut = date(13).Add(1 * time.Hour)
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, adm.Range.Nights())
}

func TestAdmit_GuestsValidation(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) { r.Guests = 0 }))
	assert.ErrorIs(t, err, ErrInvalidGuests)

	_, err = Admit(admission(func(r *AdmissionRequest) { r.Guests = 5 }))
	assert.ErrorIs(t, err, ErrGuestsExceedCapacity)

	_, err = Admit(admission(func(r *AdmissionRequest) { r.Guests = 4 }))
	assert.NoError(t, err)
}

func TestAdmit_OverlapConflict(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.Existing = []*Booking{confirmed("b-1", 12, 16)}
	}))
	assert.ErrorIs(t, err, ErrDatesUnavailable)
}

func TestAdmit_BackToBackAllowed(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.Existing = []*Booking{confirmed("b-1", 13, 16), confirmed("b-2", 7, 10)}
	}))
	assert.NoError(t, err)
}

func TestAdmit_CanceledBookingsIgnored(t *testing.T) {
	overlapping := confirmed("b-1", 11, 14)
	overlapping.Status = StatusCanceled
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.Existing = []*Booking{overlapping}
	}))
	assert.NoError(t, err)
}

func TestAdmit_ExcludeSelfOnUpdate(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.Existing = []*Booking{confirmed("b-self", 10, 13)}
		r.ExcludeID = "b-self"
	}))
	assert.NoError(t, err)
}

func TestAdmit_PriceMismatch(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.SubmittedTotal = money.Must(29999, "USD")
	}))
	assert.ErrorIs(t, err, ErrPriceMismatch)
}

func TestAdmit_AvailabilityPrecedesPrice(t *testing.T) {
	_, err := Admit(admission(func(r *AdmissionRequest) {
		r.Existing = []*Booking{confirmed("b-1", 11, 14)}
		r.SubmittedTotal = money.Must(1, "USD")
	}))
	assert.ErrorIs(t, err, ErrDatesUnavailable)
}

func TestValidateGuests(t *testing.T) {
	_, err := ValidateGuests(0, 4)
	assert.ErrorIs(t, err, ErrInvalidGuests)

	_, err = ValidateGuests(-1, 4)
	assert.ErrorIs(t, err, ErrInvalidGuests)

	_, err = ValidateGuests(5, 4)
	assert.ErrorIs(t, err, ErrGuestsExceedCapacity)

	n, err := ValidateGuests(4, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
