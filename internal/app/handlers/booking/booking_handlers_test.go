package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "globalstay/internal/domain/availability"
	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/money"
	"globalstay/internal/infra/storage/memory"
)

var frozenNow = time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)

func july(d int) time.Time {
	return time.Date(2026, time.July, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	factory  memory.Factory
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	box      *memory.Outbox
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		listings: memory.NewListingRepository(),
		bookings: memory.NewBookingRepository(),
		box:      memory.NewOutbox(),
	}
	f.factory = memory.Factory{
		ListingsRepo:     f.listings,
		BookingsRepo:     f.bookings,
		ReviewsRepo:      memory.NewReviewsRepository(),
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		UsersRepo:        memory.NewUserRepository(),
	}
	f.seedListing(t, "lst-1", "host-1")
	return f
}

func (f fixture) seedListing(t *testing.T, id, owner string) {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:    domainlistings.ListingID(id),
		Owner: domainlistings.OwnerID(owner),
		Title: "Canal view apartment",
		Address: domainlistings.Address{
			Street:  "5 Herengracht",
			City:    "Amsterdam",
			Country: "Netherlands",
		},
		Capacity:    domainlistings.Capacity{Guests: 4, Bedrooms: 2, Bathrooms: 1},
		NightlyRate: money.Must(10000, "USD"),
		Now:         frozenNow,
	})
	require.NoError(t, err)
	listing.ClearEvents()
	require.NoError(t, f.listings.Save(context.Background(), listing))
}

func (f fixture) requestHandler() *RequestBookingHandler {
	return &RequestBookingHandler{
		UoWFactory: f.factory,
		Outbox:     f.box,
		Clock:      func() time.Time { return frozenNow },
	}
}

func requestCmd(id string, in, out, guests int, total int64) RequestBookingCommand {
	return RequestBookingCommand{
		CommandID:      id,
		ListingID:      "lst-1",
		GuestID:        "guest-1",
		CheckIn:        july(in),
		CheckOut:       july(out),
		Guests:         guests,
		SubmittedTotal: money.Must(total, "USD"),
	}
}

func TestRequestBooking(t *testing.T) {
	f := newFixture(t)

	res, err := f.requestHandler().Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 30000))
	require.NoError(t, err)
	assert.Equal(t, "b-1", res.BookingID)
	assert.Equal(t, "confirmed", res.Status)

	stored, err := f.bookings.ByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
	assert.Equal(t, money.Must(30000, "USD"), stored.TotalAmount)
}

// staleCalendarReads models an admission that raced another one: every read
// returns the calendar as it looked before either side saved. Saves go
// through to the real store, so the version check still applies.
type staleCalendarReads struct {
	inner *memory.AvailabilityRepository
}

func (r *staleCalendarReads) Calendar(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	return domainavailability.NewCalendar(id), nil
}

func (r *staleCalendarReads) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	return r.inner.Save(ctx, calendar)
}

// staleBookingReads hides confirmed bookings the same way, so the admission
// pipeline cannot spot the winner before the calendar save does.
type staleBookingReads struct {
	*memory.BookingRepository
}

func (r *staleBookingReads) Confirmed(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return nil, nil
}

func TestRequestBooking_RacingAdmissionLosesOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	f.factory.AvailabilityRepo = &staleCalendarReads{inner: memory.NewAvailabilityRepository()}
	f.factory.BookingsRepo = &staleBookingReads{BookingRepository: f.bookings}
	h := f.requestHandler()

	// Both admissions read a version-zero calendar and an empty overlap set,
	// so neither detects the other. The first save bumps the version.
	_, err := h.Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 30000))
	require.NoError(t, err)

	// The second save carries the stale version and loses the race.
	_, err = h.Handle(context.Background(), requestCmd("b-2", 12, 15, 2, 30000))
	assert.ErrorIs(t, err, memory.ErrConcurrentUpdate)

	// The losing booking was never persisted.
	_, err = f.bookings.ByID(context.Background(), "b-2")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestRequestBooking_ConflictingDates(t *testing.T) {
	f := newFixture(t)
	h := f.requestHandler()

	_, err := h.Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 30000))
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), requestCmd("b-2", 12, 15, 2, 30000))
	assert.ErrorIs(t, err, domainbooking.ErrDatesUnavailable)

	// Back-to-back with the first stay is allowed.
	_, err = h.Handle(context.Background(), requestCmd("b-3", 13, 15, 2, 20000))
	assert.NoError(t, err)
}

func TestRequestBooking_OwnListing(t *testing.T) {
	f := newFixture(t)

	cmd := requestCmd("b-1", 10, 13, 2, 30000)
	cmd.GuestID = "host-1"
	_, err := f.requestHandler().Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainbooking.ErrOwnListing)
}

func TestRequestBooking_PriceMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.requestHandler().Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 29999))
	assert.ErrorIs(t, err, domainbooking.ErrPriceMismatch)
}

func TestRequestBooking_UnknownListing(t *testing.T) {
	f := newFixture(t)

	cmd := requestCmd("b-1", 10, 13, 2, 30000)
	cmd.ListingID = "missing"
	_, err := f.requestHandler().Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestUpdateBooking_ExcludesSelfFromOverlap(t *testing.T) {
	f := newFixture(t)

	_, err := f.requestHandler().Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 30000))
	require.NoError(t, err)

	update := &UpdateBookingHandler{
		UoWFactory: f.factory,
		Outbox:     f.box,
		Clock:      func() time.Time { return frozenNow },
	}

	// Shifting one day forward overlaps the booking's own current range,
	// which must not count as a conflict.
	res, err := update.Handle(context.Background(), UpdateBookingCommand{
		BookingID:      "b-1",
		GuestID:        "guest-1",
		CheckIn:        july(11),
		CheckOut:       july(14),
		Guests:         3,
		SubmittedTotal: money.Must(30000, "USD"),
	})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", res.Status)

	stored, err := f.bookings.ByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, july(11), stored.Range.CheckIn)
	assert.Equal(t, 3, stored.Guests)
}

func TestUpdateBooking_WrongGuest(t *testing.T) {
	f := newFixture(t)

	_, err := f.requestHandler().Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 30000))
	require.NoError(t, err)

	update := &UpdateBookingHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}
	_, err = update.Handle(context.Background(), UpdateBookingCommand{
		BookingID:      "b-1",
		GuestID:        "intruder",
		CheckIn:        july(11),
		CheckOut:       july(14),
		Guests:         2,
		SubmittedTotal: money.Must(30000, "USD"),
	})
	assert.ErrorIs(t, err, domainbooking.ErrNotBookingOwner)
}

// rejectingCalendarSaves delegates reads and fails every save, standing in
// for a calendar write that loses its version race.
type rejectingCalendarSaves struct {
	domainavailability.Repository
}

func (r *rejectingCalendarSaves) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	return memory.ErrConcurrentUpdate
}

func TestUpdateBooking_FailedCalendarSaveLeavesBookingUntouched(t *testing.T) {
	f := newFixture(t)

	_, err := f.requestHandler().Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 30000))
	require.NoError(t, err)

	f.factory.AvailabilityRepo = &rejectingCalendarSaves{Repository: f.factory.AvailabilityRepo}
	update := &UpdateBookingHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}

	_, err = update.Handle(context.Background(), UpdateBookingCommand{
		BookingID:      "b-1",
		GuestID:        "guest-1",
		CheckIn:        july(11),
		CheckOut:       july(14),
		Guests:         3,
		SubmittedTotal: money.Must(30000, "USD"),
	})
	assert.ErrorIs(t, err, memory.ErrConcurrentUpdate)

	// The reschedule happened on a detached copy, so the stored booking
	// keeps its original dates and guest count.
	stored, err := f.bookings.ByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, july(10), stored.Range.CheckIn)
	assert.Equal(t, july(13), stored.Range.CheckOut)
	assert.Equal(t, 2, stored.Guests)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.requestHandler().Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 30000))
	require.NoError(t, err)

	cancel := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}
	res, err := cancel.Handle(context.Background(), CancelBookingCommand{BookingID: "b-1", GuestID: "guest-1"})
	require.NoError(t, err)
	assert.Equal(t, "canceled", res.Status)

	// The canceled stay no longer blocks the dates.
	_, err = f.requestHandler().Handle(context.Background(), requestCmd("b-2", 10, 13, 2, 30000))
	assert.NoError(t, err)
}

func TestCancelBooking_Guards(t *testing.T) {
	f := newFixture(t)
	h := f.requestHandler()
	cancel := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}

	_, err := h.Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 30000))
	require.NoError(t, err)

	t.Run("wrong guest", func(t *testing.T) {
		_, err := cancel.Handle(context.Background(), CancelBookingCommand{BookingID: "b-1", GuestID: "intruder"})
		assert.ErrorIs(t, err, domainbooking.ErrNotBookingOwner)
	})

	t.Run("already canceled", func(t *testing.T) {
		_, err := cancel.Handle(context.Background(), CancelBookingCommand{BookingID: "b-1", GuestID: "guest-1"})
		require.NoError(t, err)
		_, err = cancel.Handle(context.Background(), CancelBookingCommand{BookingID: "b-1", GuestID: "guest-1"})
		assert.ErrorIs(t, err, domainbooking.ErrAlreadyCanceled)
	})

	t.Run("stay started", func(t *testing.T) {
		_, err := h.Handle(context.Background(), requestCmd("b-2", 1, 5, 2, 40000))
		require.NoError(t, err)
		lateCancel := &CancelBookingHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return july(2) }}
		_, err = lateCancel.Handle(context.Background(), CancelBookingCommand{BookingID: "b-2", GuestID: "guest-1"})
		assert.ErrorIs(t, err, domainbooking.ErrStayStarted)
	})
}

func TestListGuestBookings_SplitsCurrentAndPast(t *testing.T) {
	f := newFixture(t)
	h := f.requestHandler()

	// One stay already finished, two upcoming. The past stay is created with
	// a clock set before its check-in so admission accepts it.
	early := f.requestHandler()
	early.Clock = func() time.Time { return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC) }
	pastCmd := requestCmd("b-past", 10, 13, 2, 30000)
	pastCmd.CheckIn = time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	pastCmd.CheckOut = time.Date(2026, time.June, 13, 0, 0, 0, 0, time.UTC)
	_, err := early.Handle(context.Background(), pastCmd)
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), requestCmd("b-late", 20, 23, 2, 30000))
	require.NoError(t, err)
	_, err = h.Handle(context.Background(), requestCmd("b-soon", 10, 13, 2, 30000))
	require.NoError(t, err)

	list := &ListGuestBookingsHandler{UoWFactory: f.factory, Clock: func() time.Time { return frozenNow }}
	res, err := list.Handle(context.Background(), ListGuestBookingsQuery{GuestID: "guest-1"})
	require.NoError(t, err)

	require.Len(t, res.Current, 2)
	assert.Equal(t, "b-soon", res.Current[0].ID)
	assert.Equal(t, "b-late", res.Current[1].ID)

	require.Len(t, res.Past, 1)
	assert.Equal(t, "b-past", res.Past[0].ID)
	assert.Equal(t, "completed", res.Past[0].Status)
}

func TestListListingBookings_OwnerOnly(t *testing.T) {
	f := newFixture(t)

	_, err := f.requestHandler().Handle(context.Background(), requestCmd("b-1", 10, 13, 2, 30000))
	require.NoError(t, err)

	list := &ListListingBookingsHandler{UoWFactory: f.factory, Clock: func() time.Time { return frozenNow }}

	res, err := list.Handle(context.Background(), ListListingBookingsQuery{ListingID: "lst-1", OwnerID: "host-1"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "b-1", res.Items[0].ID)

	_, err = list.Handle(context.Background(), ListListingBookingsQuery{ListingID: "lst-1", OwnerID: "guest-1"})
	assert.ErrorIs(t, err, ErrNotListingOwner)
}
