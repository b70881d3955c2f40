package booking

import (
	"time"

	"globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/daterange"
	"globalstay/internal/domain/shared/money"
)

type BookingConfirmed struct {
	BookingID BookingID
	ListingID listings.ListingID
	GuestID   string
	Range     daterange.DateRange
	Total     money.Money
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingRescheduled struct {
	BookingID BookingID
	ListingID listings.ListingID
	Range     daterange.DateRange
	Guests    int
	Total     money.Money
	At        time.Time
}

func (e BookingRescheduled) EventName() string     { return "booking.rescheduled" }
func (e BookingRescheduled) AggregateID() string   { return string(e.BookingID) }
func (e BookingRescheduled) OccurredAt() time.Time { return e.At }

type BookingCanceled struct {
	BookingID BookingID
	ListingID listings.ListingID
	At        time.Time
}

func (e BookingCanceled) EventName() string     { return "booking.canceled" }
func (e BookingCanceled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCanceled) OccurredAt() time.Time { return e.At }
