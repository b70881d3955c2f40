package booking

import (
	"errors"
	"time"

	"globalstay/internal/domain/listings"
	"globalstay/internal/domain/pricing"
	"globalstay/internal/domain/shared/daterange"
	"globalstay/internal/domain/shared/money"
)

var (
	ErrOwnListing           = errors.New("booking: cannot book your own listing")
	ErrDatesRequired        = errors.New("booking: both check-in and check-out dates are required")
	ErrCheckInPast          = errors.New("booking: check-in date cannot be in the past")
	ErrSameDayStay          = errors.New("booking: check-in and check-out cannot be on the same day")
	ErrCheckOutNotAfter     = errors.New("booking: check-out date must be after check-in date")
	ErrInvalidGuests        = errors.New("booking: guests count must be positive")
	ErrGuestsExceedCapacity = errors.New("booking: guests exceed listing capacity")
	ErrDatesUnavailable     = errors.New("booking: selected dates are not available")
	ErrPriceMismatch        = errors.New("booking: submitted total does not match the expected price")
)

// AdmissionRequest carries everything the booking rules need. Existing must
// hold the listing's confirmed bookings as loaded inside the current
// transaction; ExcludeID names the booking being updated, if any, so it does
// not conflict with itself.
type AdmissionRequest struct {
	Listing        *listings.Listing
	GuestID        string
	CheckIn        time.Time
	CheckOut       time.Time
	Guests         int
	SubmittedTotal money.Money
	Existing       []*Booking
	ExcludeID      BookingID
	Now            time.Time
}

// Admission is the validated outcome of a passed rule pipeline.
type Admission struct {
	Range  daterange.DateRange
	Guests int
	Total  money.Money
}

// Admit runs the booking gates in fixed order: owner, dates, guests,
// availability, price. The first failing gate terminates the pipeline, so
// the error a caller sees follows this precedence regardless of how many
// rules a request violates. No gate has side effects.
func Admit(req AdmissionRequest) (Admission, error) {
	if req.Listing == nil {
		return Admission{}, listings.ErrNotFound
	}

	if string(req.Listing.Owner) == req.GuestID {
		return Admission{}, ErrOwnListing
	}

	dr, err := checkDates(req.CheckIn, req.CheckOut, req.Now)
	if err != nil {
		return Admission{}, err
	}

	guests, err := ValidateGuests(req.Guests, req.Listing.Capacity.Guests)
	if err != nil {
		return Admission{}, err
	}

	if err := checkAvailability(dr, req.Existing, req.ExcludeID); err != nil {
		return Admission{}, err
	}

	expected, err := pricing.ExpectedTotal(req.Listing.NightlyRate, dr)
	if err != nil {
		return Admission{}, err
	}
	if !pricing.Verify(req.SubmittedTotal, expected) {
		return Admission{}, ErrPriceMismatch
	}

	return Admission{Range: dr, Guests: guests, Total: expected}, nil
}

// checkDates validates presence and ordering using date-only comparison:
// both endpoints are truncated to UTC midnight before comparing, and "same
// day" is reported separately from "checkout before checkin".
func checkDates(checkIn, checkOut, now time.Time) (daterange.DateRange, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return daterange.DateRange{}, ErrDatesRequired
	}
	today := daterange.TruncateToDay(now)
	in := daterange.TruncateToDay(checkIn)
	out := daterange.TruncateToDay(checkOut)
	if in.Before(today) {
		return daterange.DateRange{}, ErrCheckInPast
	}
	if out.Equal(in) {
		return daterange.DateRange{}, ErrSameDayStay
	}
	if !out.After(in) {
		return daterange.DateRange{}, ErrCheckOutNotAfter
	}
	return daterange.DateRange{CheckIn: in, CheckOut: out}, nil
}

// ValidateGuests bounds a requested guest count against listing capacity.
// Capacity is read from the listing at validation time so a concurrent
// listing edit cannot leave a stale bound in play.
func ValidateGuests(requested, capacity int) (int, error) {
	if requested < 1 {
		return 0, ErrInvalidGuests
	}
	if requested > capacity {
		return 0, ErrGuestsExceedCapacity
	}
	return requested, nil
}

func checkAvailability(dr daterange.DateRange, existing []*Booking, exclude BookingID) error {
	for _, other := range existing {
		if other == nil || other.Status != StatusConfirmed {
			continue
		}
		if exclude != "" && other.ID == exclude {
			continue
		}
		if other.Range.Overlaps(dr) {
			return ErrDatesUnavailable
		}
	}
	return nil
}
