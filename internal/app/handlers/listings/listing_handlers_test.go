package listings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
	"globalstay/internal/domain/shared/daterange"
	"globalstay/internal/domain/shared/money"
	domainuser "globalstay/internal/domain/user"
	"globalstay/internal/infra/storage/memory"
)

var frozenNow = time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	factory  memory.Factory
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	reviews  *memory.ReviewsRepository
	users    *memory.UserRepository
	box      *memory.Outbox
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		listings: memory.NewListingRepository(),
		bookings: memory.NewBookingRepository(),
		reviews:  memory.NewReviewsRepository(),
		users:    memory.NewUserRepository(),
		box:      memory.NewOutbox(),
	}
	f.factory = memory.Factory{
		ListingsRepo:     f.listings,
		BookingsRepo:     f.bookings,
		ReviewsRepo:      f.reviews,
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		UsersRepo:        f.users,
	}
	return f
}

func (f fixture) createHandler() *CreateListingHandler {
	return &CreateListingHandler{
		UoWFactory: f.factory,
		Outbox:     f.box,
		Clock:      func() time.Time { return frozenNow },
	}
}

func createCmd(id, owner string) CreateListingCommand {
	return CreateListingCommand{
		CommandID:    id,
		OwnerID:      owner,
		Title:        "Harbour loft",
		Description:  "Top floor, bright",
		TypeOfPlace:  "entire_place",
		PropertyType: "apartment",
		Address: domainlistings.Address{
			Street:  "14 Dock Rd",
			City:    "Rotterdam",
			Country: "Netherlands",
		},
		Amenities:   []string{"wifi", "kitchen"},
		Capacity:    domainlistings.Capacity{Guests: 4, Bedrooms: 2, Bathrooms: 1},
		NightlyRate: money.Must(12000, "EUR"),
	}
}

func TestCreateListing(t *testing.T) {
	f := newFixture(t)

	res, err := f.createHandler().Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)
	assert.Equal(t, "lst-1", res.ListingID)

	stored, err := f.listings.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Equal(t, domainlistings.StatusAvailable, stored.Status)
	assert.Equal(t, domainlistings.OwnerID("host-1"), stored.Owner)
}

func TestCreateListing_PromotesOwnerToHost(t *testing.T) {
	f := newFixture(t)

	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           "host-1",
		Email:        "host@example.com",
		Name:         "Hennie",
		PasswordHash: "x",
		CreatedAt:    frozenNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), u))

	_, err = f.createHandler().Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)

	stored, err := f.users.ByID(context.Background(), "host-1")
	require.NoError(t, err)
	assert.True(t, stored.HasRole(domainuser.RoleHost))
}

func TestUpdateListing_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.createHandler().Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)

	update := &UpdateListingHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}

	cmd := UpdateListingCommand{
		ListingID:    "lst-1",
		OwnerID:      "host-1",
		Title:        "Harbour loft deluxe",
		Address:      createCmd("", "").Address,
		Capacity:     domainlistings.Capacity{Guests: 6, Bedrooms: 3, Bathrooms: 2},
		NightlyRate:  money.Must(15000, "EUR"),
		PropertyType: "apartment",
	}
	_, err = update.Handle(context.Background(), cmd)
	require.NoError(t, err)

	stored, err := f.listings.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Equal(t, "Harbour loft deluxe", stored.Title)
	assert.Equal(t, 6, stored.Capacity.Guests)

	cmd.OwnerID = "intruder"
	_, err = update.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestSetListingStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.createHandler().Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)

	set := &SetListingStatusHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}

	res, err := set.Handle(context.Background(), SetListingStatusCommand{ListingID: "lst-1", OwnerID: "host-1", Status: "unavailable"})
	require.NoError(t, err)
	assert.Equal(t, "unavailable", res.Status)

	// Pausing twice is an invalid transition.
	_, err = set.Handle(context.Background(), SetListingStatusCommand{ListingID: "lst-1", OwnerID: "host-1", Status: "unavailable"})
	assert.ErrorIs(t, err, domainlistings.ErrInvalidState)

	res, err = set.Handle(context.Background(), SetListingStatusCommand{ListingID: "lst-1", OwnerID: "host-1", Status: "available"})
	require.NoError(t, err)
	assert.Equal(t, "available", res.Status)
}

func TestDeleteListing_CascadesReviews(t *testing.T) {
	f := newFixture(t)
	_, err := f.createHandler().Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)

	review, err := domainreviews.New(domainreviews.CreateParams{
		ID:        "r-1",
		ListingID: "lst-1",
		AuthorID:  "guest-1",
		Rating:    5,
		CreatedAt: frozenNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.reviews.Save(context.Background(), review))

	listing, err := f.listings.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	listing.AddReviewRef("r-1")
	require.NoError(t, f.listings.Save(context.Background(), listing))

	del := &DeleteListingHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}
	_, err = del.Handle(context.Background(), DeleteListingCommand{ListingID: "lst-1", OwnerID: "host-1"})
	require.NoError(t, err)

	_, err = f.listings.ByID(context.Background(), "lst-1")
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
	_, err = f.reviews.ByID(context.Background(), "r-1")
	assert.ErrorIs(t, err, domainreviews.ErrNotFound)
}

func TestDeleteListing_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.createHandler().Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)

	del := &DeleteListingHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}
	_, err = del.Handle(context.Background(), DeleteListingCommand{ListingID: "lst-1", OwnerID: "guest-1"})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestSearchCatalog_OnlyAvailableListings(t *testing.T) {
	f := newFixture(t)
	h := f.createHandler()

	_, err := h.Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)
	_, err = h.Handle(context.Background(), createCmd("lst-2", "host-1"))
	require.NoError(t, err)

	set := &SetListingStatusHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}
	_, err = set.Handle(context.Background(), SetListingStatusCommand{ListingID: "lst-2", OwnerID: "host-1", Status: "unavailable"})
	require.NoError(t, err)

	search := &SearchCatalogHandler{UoWFactory: f.factory}
	page, err := search.Handle(context.Background(), SearchCatalogQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "lst-1", page.Items[0].ID)
	assert.Equal(t, 1, page.Total)
}

func TestSearchCatalog_Filters(t *testing.T) {
	f := newFixture(t)
	h := f.createHandler()

	_, err := h.Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)

	other := createCmd("lst-2", "host-2")
	other.Address.City = "Utrecht"
	other.Capacity.Guests = 2
	other.NightlyRate = money.Must(8000, "EUR")
	_, err = h.Handle(context.Background(), other)
	require.NoError(t, err)

	search := &SearchCatalogHandler{UoWFactory: f.factory}

	page, err := search.Handle(context.Background(), SearchCatalogQuery{City: "rotterdam"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "lst-1", page.Items[0].ID)

	page, err = search.Handle(context.Background(), SearchCatalogQuery{MinGuests: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "lst-1", page.Items[0].ID)

	page, err = search.Handle(context.Background(), SearchCatalogQuery{PriceMaxCents: 10000})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "lst-2", page.Items[0].ID)

	page, err = search.Handle(context.Background(), SearchCatalogQuery{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "lst-2", page.Items[0].ID)
}

func TestListHostListings_IncludesPaused(t *testing.T) {
	f := newFixture(t)
	h := f.createHandler()

	_, err := h.Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)
	_, err = h.Handle(context.Background(), createCmd("lst-2", "host-1"))
	require.NoError(t, err)
	_, err = h.Handle(context.Background(), createCmd("lst-3", "host-2"))
	require.NoError(t, err)

	set := &SetListingStatusHandler{UoWFactory: f.factory, Outbox: f.box, Clock: func() time.Time { return frozenNow }}
	_, err = set.Handle(context.Background(), SetListingStatusCommand{ListingID: "lst-2", OwnerID: "host-1", Status: "unavailable"})
	require.NoError(t, err)

	list := &ListHostListingsHandler{UoWFactory: f.factory}
	page, err := list.Handle(context.Background(), ListHostListingsQuery{OwnerID: "host-1"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestGetListing_Detail(t *testing.T) {
	f := newFixture(t)
	_, err := f.createHandler().Handle(context.Background(), createCmd("lst-1", "host-1"))
	require.NoError(t, err)

	// A future confirmed stay shows up as a booked range; a finished one
	// does not.
	futureRange, err := daterange.New(frozenNow.AddDate(0, 0, 10), frozenNow.AddDate(0, 0, 13))
	require.NoError(t, err)
	future, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID: "b-future", ListingID: "lst-1", GuestID: "guest-1",
		Range: futureRange, Guests: 2, Total: money.Must(36000, "EUR"), CreatedAt: frozenNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.bookings.Save(context.Background(), future))

	pastRange, err := daterange.New(frozenNow.AddDate(0, 0, -10), frozenNow.AddDate(0, 0, -7))
	require.NoError(t, err)
	past, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID: "b-past", ListingID: "lst-1", GuestID: "guest-2",
		Range: pastRange, Guests: 2, Total: money.Must(36000, "EUR"), CreatedAt: frozenNow.AddDate(0, 0, -20),
	})
	require.NoError(t, err)
	require.NoError(t, f.bookings.Save(context.Background(), past))

	get := &GetListingHandler{UoWFactory: f.factory, Clock: func() time.Time { return frozenNow }}
	detail, err := get.Handle(context.Background(), GetListingQuery{ListingID: "lst-1"})
	require.NoError(t, err)

	assert.Equal(t, "lst-1", detail.ID)
	require.Len(t, detail.BookedRanges, 1)
	assert.Equal(t, futureRange.CheckIn, detail.BookedRanges[0].Start)
}

func TestGetListing_NotFound(t *testing.T) {
	f := newFixture(t)
	get := &GetListingHandler{UoWFactory: f.factory, Clock: func() time.Time { return frozenNow }}
	_, err := get.Handle(context.Background(), GetListingQuery{ListingID: "missing"})
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
}
