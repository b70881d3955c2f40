package booking

import (
	"errors"
	"time"
)

var (
	ErrNotBookingOwner = errors.New("booking: not authorized to manage this booking")
	ErrAlreadyCanceled = errors.New("booking: already canceled")
	ErrStayStarted     = errors.New("booking: cannot cancel a stay that has already started")
)

// CanCancel guards the confirmed-to-canceled transition. Unlike the
// admission date checks this compares full timestamps: a stay that started
// earlier today is already in progress and cannot be canceled.
func CanCancel(b *Booking, userID string, now time.Time) error {
	if b == nil {
		return ErrBookingNotFound
	}
	if b.GuestID != userID {
		return ErrNotBookingOwner
	}
	if b.Status == StatusCanceled {
		return ErrAlreadyCanceled
	}
	if !b.Range.CheckIn.After(now.UTC()) {
		return ErrStayStarted
	}
	return nil
}
