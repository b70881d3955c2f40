package memory

import (
	"context"
	"errors"

	"globalstay/internal/app/uow"
	domainavailability "globalstay/internal/domain/availability"
	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
	domainuser "globalstay/internal/domain/user"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo     domainlistings.Repository
	BookingsRepo     domainbooking.Repository
	ReviewsRepo      domainreviews.Repository
	AvailabilityRepo domainavailability.Repository
	UsersRepo        domainuser.Repository
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports, and the versioned saves
// inside the repositories still reject conflicting writers.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.BookingsRepo == nil || f.ReviewsRepo == nil || f.AvailabilityRepo == nil || f.UsersRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings:     f.ListingsRepo,
		bookings:     f.BookingsRepo,
		reviews:      f.ReviewsRepo,
		availability: f.AvailabilityRepo,
		users:        f.UsersRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	listings     domainlistings.Repository
	bookings     domainbooking.Repository
	reviews      domainreviews.Repository
	availability domainavailability.Repository
	users        domainuser.Repository
}

func (u *Unit) Listings() domainlistings.Repository { return u.listings }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Reviews() domainreviews.Repository { return u.reviews }

func (u *Unit) Availability() domainavailability.Repository { return u.availability }

func (u *Unit) Users() domainuser.Repository { return u.users }

func (u *Unit) Commit(ctx context.Context) error { return nil }

func (u *Unit) Rollback(ctx context.Context) error { return nil }

var _ uow.UnitOfWork = (*Unit)(nil)
var _ uow.UoWFactory = Factory{}
