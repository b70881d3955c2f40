package booking

import (
	"context"
	"errors"
	"time"

	"globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/daterange"
	"globalstay/internal/domain/shared/events"
	"globalstay/internal/domain/shared/money"
)

var (
	ErrBookingNotFound = errors.New("booking: not found")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrGuestIDRequired = errors.New("booking: guest id required")
)

type BookingID string

// Status is the persisted lifecycle state. Exactly these three values are
// ever stored; StatusCompleted below is derived at read time and never
// written back.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"

	// StatusCompleted is presentation-only: a confirmed booking whose
	// checkout is in the past.
	StatusCompleted Status = "completed"
)

type Booking struct {
	ID          BookingID
	ListingID   listings.ListingID
	GuestID     string
	Range       daterange.DateRange
	Guests      int
	TotalAmount money.Money
	Status      Status
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id BookingID) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	// Confirmed returns every booking for the listing with persisted
	// status "confirmed". Overlap filtering and self-exclusion happen in
	// the admission rules, not in the store.
	Confirmed(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	ListingID listings.ListingID
	GuestID   string
	Range     daterange.DateRange
	Guests    int
	Total     money.Money
	CreatedAt time.Time
}

// NewBooking builds a confirmed booking from admitted values. Validation of
// dates, guests, availability and price happens beforehand in Admit; this
// constructor only guards structural invariants.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, ErrGuestIDRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		ListingID:   params.ListingID,
		GuestID:     params.GuestID,
		Range:       params.Range,
		Guests:      params.Guests,
		TotalAmount: params.Total,
		Status:      StatusConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, GuestID: b.GuestID, Range: b.Range, Total: b.TotalAmount, At: now})
	return b, nil
}

// Reschedule replaces dates, guest count and total on an existing booking.
// Callers must have run the admission rules with this booking excluded from
// the overlap set first.
func (b *Booking) Reschedule(dr daterange.DateRange, guests int, total money.Money, now time.Time) error {
	if b.Status == StatusCanceled {
		return ErrInvalidState
	}
	if err := dr.Validate(); err != nil {
		return err
	}
	if guests <= 0 {
		return ErrInvalidGuests
	}
	b.Range = dr
	b.Guests = guests
	b.TotalAmount = total
	b.UpdatedAt = now.UTC()
	b.Record(BookingRescheduled{BookingID: b.ID, ListingID: b.ListingID, Range: dr, Guests: guests, Total: total, At: b.UpdatedAt})
	return nil
}

// Cancel transitions confirmed to canceled. No other transition is written
// by the cancellation path.
func (b *Booking) Cancel(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCanceled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCanceled{BookingID: b.ID, ListingID: b.ListingID, At: b.UpdatedAt})
	return nil
}

// EffectiveStatus derives the presentation state: a confirmed booking whose
// checkout has passed reads as completed. The stored status is untouched,
// so a later cancellation can never be undone by a stale "completed" write.
func (b *Booking) EffectiveStatus(now time.Time) Status {
	if b.Status == StatusConfirmed && b.Range.CheckOut.Before(now.UTC()) {
		return StatusCompleted
	}
	return b.Status
}
