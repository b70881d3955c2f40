package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"globalstay/internal/app/commands"
	"globalstay/internal/app/middleware"
	"globalstay/internal/app/outbox"
	"globalstay/internal/app/uow"
	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/money"
)

const requestBookingKey = "booking.request"

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

type RequestBookingCommand struct {
	CommandID       string
	ListingID       string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	SubmittedTotal  money.Money
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
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

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
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
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		ListingID: listing.ID,
		GuestID:   cmd.GuestID,
		Range:     admission.Range,
		Guests:    admission.Guests,
		Total:     admission.Total,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	// The calendar save is the compare-and-swap that serializes racing
	// requests for the same listing: a version conflict here means another
	// booking took the dates between our read and this write.
	calendar, err := unit.Availability().Calendar(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	if err := calendar.Reserve(admission.Range, string(booking.ID), now); err != nil {
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
		h.Logger.Info("booking requested",
			"booking_id", booking.ID,
			"listing_id", booking.ListingID,
			"guest_id", booking.GuestID,
			"check_in", booking.Range.CheckIn,
			"check_out", booking.Range.CheckOut,
		)
	}

	return &RequestBookingResult{BookingID: string(booking.ID), Status: string(booking.Status)}, nil
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
