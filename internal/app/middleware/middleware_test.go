package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalstay/internal/app/commands"
	bookingapp "globalstay/internal/app/handlers/booking"
	"globalstay/internal/app/middleware"
	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/money"
	"globalstay/internal/infra/storage/memory"
)

var frozenNow = time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)

func newBus(t *testing.T) (commands.Bus, *memory.BookingRepository) {
	t.Helper()

	listings := memory.NewListingRepository()
	bookings := memory.NewBookingRepository()
	factory := memory.Factory{
		ListingsRepo:     listings,
		BookingsRepo:     bookings,
		ReviewsRepo:      memory.NewReviewsRepository(),
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		UsersRepo:        memory.NewUserRepository(),
	}
	box := memory.NewOutbox()

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:    "lst-1",
		Owner: "host-1",
		Title: "Old town flat",
		Address: domainlistings.Address{
			Street:  "9 Market Sq",
			City:    "Krakow",
			Country: "Poland",
		},
		Capacity:    domainlistings.Capacity{Guests: 3, Bedrooms: 1, Bathrooms: 1},
		NightlyRate: money.Must(10000, "USD"),
		Now:         frozenNow,
	})
	require.NoError(t, err)
	listing.ClearEvents()
	require.NoError(t, listings.Save(context.Background(), listing))

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: factory,
		Outbox:     box,
		Clock:      func() time.Time { return frozenNow },
	})

	chained := middleware.ChainCommands(
		bus,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	return chained, bookings
}

func requestCmd(id, key string, in, out int) bookingapp.RequestBookingCommand {
	return bookingapp.RequestBookingCommand{
		CommandID:       id,
		ListingID:       "lst-1",
		GuestID:         "guest-1",
		CheckIn:         time.Date(2026, time.July, in, 0, 0, 0, 0, time.UTC),
		CheckOut:        time.Date(2026, time.July, out, 0, 0, 0, 0, time.UTC),
		Guests:          2,
		SubmittedTotal:  money.Must(int64(out-in)*10000, "USD"),
		IdempotencyKeyV: key,
	}
}

func TestChainedDispatch(t *testing.T) {
	bus, bookings := newBus(t)

	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](
		context.Background(), bus, requestCmd("b-1", "", 10, 13))
	require.NoError(t, err)
	assert.Equal(t, "b-1", result.BookingID)

	stored, err := bookings.ByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
}

func TestIdempotency_ReplaysStoredResult(t *testing.T) {
	bus, bookings := newBus(t)

	first, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](
		context.Background(), bus, requestCmd("b-1", "idem-1", 10, 13))
	require.NoError(t, err)

	// The retry carries a new command id but the same idempotency key, so
	// the stored result comes back and no second booking is created.
	second, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](
		context.Background(), bus, requestCmd("b-2", "idem-1", 10, 13))
	require.NoError(t, err)
	assert.Equal(t, first.BookingID, second.BookingID)

	_, err = bookings.ByID(context.Background(), "b-2")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestIdempotency_ReplaysFailure(t *testing.T) {
	bus, _ := newBus(t)

	// Same-day stay fails admission; the failure is recorded under the key.
	_, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](
		context.Background(), bus, requestCmd("b-1", "idem-1", 10, 10))
	require.Error(t, err)

	_, err = commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](
		context.Background(), bus, requestCmd("b-1", "idem-1", 10, 10))
	require.Error(t, err)
	assert.Equal(t, domainbooking.ErrSameDayStay.Error(), err.Error())
}

func TestTransaction_ConflictSurfacesToCaller(t *testing.T) {
	bus, _ := newBus(t)

	_, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](
		context.Background(), bus, requestCmd("b-1", "", 10, 13))
	require.NoError(t, err)

	_, err = commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](
		context.Background(), bus, requestCmd("b-2", "", 12, 15))
	assert.ErrorIs(t, err, domainbooking.ErrDatesUnavailable)
}
