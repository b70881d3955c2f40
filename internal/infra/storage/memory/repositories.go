package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	domainavailability "globalstay/internal/domain/availability"
	domainbooking "globalstay/internal/domain/booking"
	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
	"globalstay/internal/domain/shared/events"
)

// ErrConcurrentUpdate signals that a versioned save lost a race with another
// writer. Callers retry or surface it as a conflict.
var ErrConcurrentUpdate = errors.New("memory: concurrent update")

// Loads hand out detached copies, mirroring the mongo repositories where
// every read decodes a fresh document. A handler that mutates a loaded
// aggregate and then fails leaves the store untouched; only a successful
// Save publishes the change.
func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	c := *l
	c.Amenities = append([]string(nil), l.Amenities...)
	c.Photos = append([]string(nil), l.Photos...)
	c.Reviews = append([]string(nil), l.Reviews...)
	c.EventRecorder = events.EventRecorder{}
	return &c
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	c := *b
	c.EventRecorder = events.EventRecorder{}
	return &c
}

func cloneCalendar(cal *domainavailability.Calendar) *domainavailability.Calendar {
	c := *cal
	c.Blocks = append([]domainavailability.Block(nil), cal.Blocks...)
	return &c
}

// ListingRepository is an in-memory implementation for tests and demo runs.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[listing.ID]; ok && existing != listing && existing.Version != listing.Version {
		return ErrConcurrentUpdate
	}
	listing.Version++
	r.items[listing.ID] = listing
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// Search filters and orders listings the way the mongo implementation does,
// so handler tests run against the same semantics as production.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return domainlistings.SearchResult{}, ctx.Err()
			default:
			}
		}

		if opts.OnlyAvailable && listing.Status != domainlistings.StatusAvailable {
			continue
		}
		if opts.Owner != "" && listing.Owner != opts.Owner {
			continue
		}
		if len(opts.Statuses) > 0 && !statusIncluded(listing.Status, opts.Statuses) {
			continue
		}
		if opts.City != "" && !strings.EqualFold(listing.Address.City, opts.City) {
			continue
		}
		if opts.Country != "" && !strings.EqualFold(listing.Address.Country, opts.Country) {
			continue
		}
		if opts.LocationQuery != "" && !matchLocation(listing, opts.LocationQuery) {
			continue
		}
		if opts.MinGuests > 0 && listing.Capacity.Guests < opts.MinGuests {
			continue
		}
		if opts.PriceMinCents > 0 && listing.NightlyRate.Amount < opts.PriceMinCents {
			continue
		}
		if opts.PriceMaxCents > 0 && listing.NightlyRate.Amount > opts.PriceMaxCents {
			continue
		}
		if !tokensMatch(listing.Amenities, opts.Amenities) {
			continue
		}
		if len(opts.PropertyTypes) > 0 && !propertyTypeMatches(listing.PropertyType, opts.PropertyTypes) {
			continue
		}
		matches = append(matches, listing)
	}

	sort.Slice(matches, func(i, j int) bool {
		switch opts.Sort {
		case domainlistings.SortByPriceDesc:
			if matches[i].NightlyRate.Amount == matches[j].NightlyRate.Amount {
				return matches[i].AvgRating > matches[j].AvgRating
			}
			return matches[i].NightlyRate.Amount > matches[j].NightlyRate.Amount
		case domainlistings.SortByRating:
			if matches[i].AvgRating == matches[j].AvgRating {
				return matches[i].ReviewCount > matches[j].ReviewCount
			}
			return matches[i].AvgRating > matches[j].AvgRating
		case domainlistings.SortByNewest:
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		default:
			if matches[i].NightlyRate.Amount == matches[j].NightlyRate.Amount {
				return matches[i].AvgRating > matches[j].AvgRating
			}
			return matches[i].NightlyRate.Amount < matches[j].NightlyRate.Amount
		}
	})

	total := len(matches)
	if opts.Offset >= total {
		return domainlistings.SearchResult{Items: []*domainlistings.Listing{}, Total: total}, nil
	}
	end := opts.Offset + opts.Limit
	if end > total {
		end = total
	}
	return domainlistings.SearchResult{Items: matches[opts.Offset:end], Total: total}, nil
}

func tokensMatch(values []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(values))
	for _, v := range values {
		have[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	for _, want := range required {
		if _, ok := have[want]; !ok {
			return false
		}
	}
	return true
}

func matchLocation(listing *domainlistings.Listing, needle string) bool {
	fields := []string{
		listing.Address.City,
		listing.Address.State,
		listing.Address.Country,
		listing.Address.Street,
		listing.Title,
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func propertyTypeMatches(value string, allowed []string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func statusIncluded(status domainlistings.Status, allowed []domainlistings.Status) bool {
	for _, s := range allowed {
		if status == s {
			return true
		}
	}
	return false
}

// BookingRepository stores bookings in memory with version bookkeeping that
// mirrors the mongo repository's compare-and-swap saves.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(booking), nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[booking.ID]; ok && existing != booking && existing.Version != booking.Version {
		return ErrConcurrentUpdate
	}
	booking.Version++
	r.items[booking.ID] = booking
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrBookingNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.GuestID == guestID {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.ListingID == listingID {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (r *BookingRepository) Confirmed(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.ListingID == listingID && booking.Status == domainbooking.StatusConfirmed {
			out = append(out, booking)
		}
	}
	return out, nil
}

// ReviewsRepository stores reviews in memory.
type ReviewsRepository struct {
	mu    sync.RWMutex
	items map[domainreviews.ReviewID]*domainreviews.Review
}

func NewReviewsRepository() *ReviewsRepository {
	return &ReviewsRepository{items: make(map[domainreviews.ReviewID]*domainreviews.Review)}
}

func (r *ReviewsRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return review, nil
}

// ByIDs returns the reviews that exist; ids with no backing review are
// skipped rather than failing the whole load.
func (r *ReviewsRepository) ByIDs(ctx context.Context, ids []domainreviews.ReviewID) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainreviews.Review, 0, len(ids))
	for _, id := range ids {
		if review, ok := r.items[id]; ok {
			out = append(out, review)
		}
	}
	return out, nil
}

func (r *ReviewsRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.ListingID == listingID {
			all = append(all, review)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []*domainreviews.Review{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *ReviewsRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[review.ID] = review
	return nil
}

func (r *ReviewsRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainreviews.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// AvailabilityRepository holds per-listing calendars. Save performs the same
// version check the mongo repository expresses as a filtered update, so the
// booking race behaves identically under test.
type AvailabilityRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainavailability.Calendar
}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{items: make(map[domainlistings.ListingID]*domainavailability.Calendar)}
}

// Calendar returns the listing's calendar, creating an empty one on first
// access.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if calendar, ok := r.items[id]; ok {
		return cloneCalendar(calendar), nil
	}
	return domainavailability.NewCalendar(id), nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[calendar.ListingID]; ok && existing != calendar && existing.Version != calendar.Version {
		return ErrConcurrentUpdate
	}
	calendar.Version++
	r.items[calendar.ListingID] = calendar
	return nil
}

var (
	_ domainlistings.Repository     = (*ListingRepository)(nil)
	_ domainbooking.Repository      = (*BookingRepository)(nil)
	_ domainreviews.Repository      = (*ReviewsRepository)(nil)
	_ domainavailability.Repository = (*AvailabilityRepository)(nil)
)
