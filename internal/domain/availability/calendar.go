package availability

import (
	"context"
	"errors"
	"time"

	"globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/daterange"
)

var (
	ErrRangeBlocked  = errors.New("availability: range overlaps an existing block")
	ErrBlockNotFound = errors.New("availability: block not found")
)

// Block reserves a date range for one booking.
type Block struct {
	Range     daterange.DateRange
	BookingID string
	CreatedAt time.Time
}

// Calendar is the per-listing conflict index. Every confirmed booking owns
// exactly one block; the calendar document carries a version token, so the
// save after Reserve is a compare-and-swap. Two racing admissions both read
// "no conflict", but only the first save lands; the second fails with a
// version conflict, which callers treat the same as a date conflict.
type Calendar struct {
	ListingID listings.ListingID
	Blocks    []Block
	Version   int64
}

type Repository interface {
	Calendar(ctx context.Context, id listings.ListingID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

func NewCalendar(id listings.ListingID) *Calendar {
	return &Calendar{ListingID: id}
}

func (c *Calendar) CanReserve(r daterange.DateRange, excludeBookingID string) bool {
	for _, block := range c.Blocks {
		if excludeBookingID != "" && block.BookingID == excludeBookingID {
			continue
		}
		if block.Range.Overlaps(r) {
			return false
		}
	}
	return true
}

// Reserve places the booking's block, replacing any block the booking
// already holds so a booking never owns more than one. Overlaps with blocks
// held by other bookings are rejected.
func (c *Calendar) Reserve(r daterange.DateRange, bookingID string, now time.Time) error {
	if !c.CanReserve(r, bookingID) {
		return ErrRangeBlocked
	}
	_ = c.Release(bookingID)
	c.Blocks = append(c.Blocks, Block{Range: r, BookingID: bookingID, CreatedAt: now.UTC()})
	return nil
}

// Release removes the booking's block. Used on cancellation and before
// re-reserving a rescheduled range.
func (c *Calendar) Release(bookingID string) error {
	idx := -1
	for i, block := range c.Blocks {
		if block.BookingID == bookingID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrBlockNotFound
	}
	c.Blocks = append(c.Blocks[:idx], c.Blocks[idx+1:]...)
	return nil
}

// Swap moves the booking's block to a new range, keeping the old block when
// the new range cannot be reserved.
func (c *Calendar) Swap(r daterange.DateRange, bookingID string, now time.Time) error {
	return c.Reserve(r, bookingID, now)
}
