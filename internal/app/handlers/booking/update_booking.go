package booking

import (
	"context"
	"log/slog"
	"time"

	"globalstay/internal/app/commands"
	"globalstay/internal/app/outbox"
	"globalstay/internal/app/uow"
	domainbooking "globalstay/internal/domain/booking"
	"globalstay/internal/domain/shared/money"
)

const updateBookingKey = "booking.update"

type UpdateBookingCommand struct {
	BookingID      string
	GuestID        string
	CheckIn        time.Time
	CheckOut       time.Time
	Guests         int
	SubmittedTotal money.Money
}

func (c UpdateBookingCommand) Key() string { return updateBookingKey }

type UpdateBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type UpdateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Handle reschedules an existing booking. The full admission pipeline runs
// again with the booking itself excluded from the overlap set, so moving a
// stay forward by a day never conflicts with its own current dates.
func (h *UpdateBookingHandler) Handle(ctx context.Context, cmd UpdateBookingCommand) (*UpdateBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := h.now()

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if booking.GuestID != cmd.GuestID {
		return nil, domainbooking.ErrNotBookingOwner
	}

	listing, err := unit.Listings().ByID(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}

	existing, err := unit.Bookings().Confirmed(ctx, listing.ID)
	if err != nil {
		return nil, err
	}

	admission, err := domainbooking.Admit(domainbooking.AdmissionRequest{
		Listing:        listing,
		GuestID:        cmd.GuestID,
		CheckIn:        cmd.CheckIn,
		CheckOut:       cmd.CheckOut,
		Guests:         cmd.Guests,
		SubmittedTotal: cmd.SubmittedTotal,
		Existing:       existing,
		ExcludeID:      booking.ID,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	if err := booking.Reschedule(admission.Range, admission.Guests, admission.Total, now); err != nil {
		return nil, err
	}

	calendar, err := unit.Availability().Calendar(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	if err := calendar.Swap(admission.Range, string(booking.ID), now); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	pending := booking.PendingEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("booking rescheduled", "booking_id", booking.ID, "listing_id", booking.ListingID)
	}

	return &UpdateBookingResult{BookingID: string(booking.ID), Status: string(booking.Status)}, nil
}

func (h *UpdateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *UpdateBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[UpdateBookingCommand, *UpdateBookingResult] = (*UpdateBookingHandler)(nil)
