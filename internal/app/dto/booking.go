package dto

import (
	"time"

	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type BookingListingSnapshot struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	City         string `json:"city"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// BookingSummary is the read model for a booking. Status carries the
// effective presentation status: a confirmed stay with a past checkout is
// reported as "completed" even though only pending/confirmed/canceled are
// ever stored.
type BookingSummary struct {
	ID        string                 `json:"id"`
	Listing   BookingListingSnapshot `json:"listing"`
	GuestID   string                 `json:"guest_id"`
	CheckIn   time.Time              `json:"check_in"`
	CheckOut  time.Time              `json:"check_out"`
	Guests    int                    `json:"guests"`
	Status    string                 `json:"status"`
	Total     MoneyDTO               `json:"total"`
	CreatedAt time.Time              `json:"created_at"`
}

type GuestBookingCollection struct {
	Current []BookingSummary `json:"current"`
	Past    []BookingSummary `json:"past"`
}

type ListingBookingCollection struct {
	Items []BookingSummary `json:"items"`
}

func MapBookingSummary(b *domainbooking.Booking, listing *domainlistings.Listing, now time.Time) BookingSummary {
	snapshot := BookingListingSnapshot{ID: string(b.ListingID)}
	if listing != nil {
		snapshot.Title = listing.Title
		snapshot.City = listing.Address.City
		snapshot.Country = listing.Address.Country
		snapshot.ThumbnailURL = listing.ThumbnailURL
	}
	return BookingSummary{
		ID:        string(b.ID),
		Listing:   snapshot,
		GuestID:   b.GuestID,
		CheckIn:   b.Range.CheckIn,
		CheckOut:  b.Range.CheckOut,
		Guests:    b.Guests,
		Status:    string(b.EffectiveStatus(now)),
		Total:     MapMoney(b.TotalAmount),
		CreatedAt: b.CreatedAt,
	}
}

// BookedRange exposes occupied date windows on the listing detail view so
// clients can grey out unavailable dates.
type BookedRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
