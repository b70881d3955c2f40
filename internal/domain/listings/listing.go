package listings

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"globalstay/internal/domain/shared/events"
	"globalstay/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("listings: not found")
	ErrTitleRequired     = errors.New("listings: title is required")
	ErrOwnerRequired     = errors.New("listings: owner is required")
	ErrInvalidCapacity   = errors.New("listings: capacity values must be positive")
	ErrNightlyRate       = errors.New("listings: nightly rate must be non-negative")
	ErrInvalidState      = errors.New("listings: invalid state transition")
	ErrAddressIncomplete = errors.New("listings: address must be provided")
)

type ListingID string
type OwnerID string

type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

type Address struct {
	HouseNumber  string
	BuildingName string
	Street       string
	City         string
	State        string
	PostalCode   string
	Country      string
	Lat          float64
	Lon          float64
}

func (a Address) Valid() bool {
	return strings.TrimSpace(a.Street) != "" && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.Country) != ""
}

// Capacity bounds how many people a listing can host. All values positive.
type Capacity struct {
	Guests    int
	Bedrooms  int
	Bathrooms int
}

func (c Capacity) Valid() bool {
	return c.Guests >= 1 && c.Bedrooms >= 1 && c.Bathrooms >= 1
}

// Listing is a bookable property. AvgRating and ReviewCount are denormalized
// caches over Reviews; they are recomputed from the full review set on every
// review mutation, never adjusted incrementally.
type Listing struct {
	ID           ListingID
	Owner        OwnerID
	Title        string
	Description  string
	TypeOfPlace  string
	PropertyType string
	Address      Address
	Amenities    []string
	Capacity     Capacity
	NightlyRate  money.Money
	Status       Status
	Reviews      []string
	AvgRating    float64
	ReviewCount  int
	ThumbnailURL string
	Photos       []string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID           ListingID
	Owner        OwnerID
	Title        string
	Description  string
	TypeOfPlace  string
	PropertyType string
	Address      Address
	Amenities    []string
	Capacity     Capacity
	NightlyRate  money.Money
	ThumbnailURL string
	Photos       []string
	Now          time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !params.Capacity.Valid() {
		return nil, ErrInvalidCapacity
	}
	if params.NightlyRate.Amount < 0 {
		return nil, ErrNightlyRate
	}
	if !params.Address.Valid() {
		return nil, ErrAddressIncomplete
	}
	now := params.Now.UTC()

	listing := &Listing{
		ID:           params.ID,
		Owner:        params.Owner,
		Title:        strings.TrimSpace(params.Title),
		Description:  strings.TrimSpace(params.Description),
		TypeOfPlace:  strings.TrimSpace(params.TypeOfPlace),
		PropertyType: strings.TrimSpace(params.PropertyType),
		Address:      params.Address,
		Amenities:    append([]string(nil), params.Amenities...),
		Capacity:     params.Capacity,
		NightlyRate:  params.NightlyRate,
		Status:       StatusAvailable,
		ThumbnailURL: strings.TrimSpace(params.ThumbnailURL),
		Photos:       append([]string(nil), params.Photos...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	listing.Record(ListingCreatedEvent{ListingID: listing.ID, Owner: listing.Owner, At: now})
	return listing, nil
}

type UpdateParams struct {
	Title        string
	Description  string
	TypeOfPlace  string
	PropertyType string
	Address      Address
	Amenities    []string
	Capacity     Capacity
	NightlyRate  money.Money
	ThumbnailURL string
	Photos       []string
	Now          time.Time
}

func (l *Listing) UpdateAttributes(params UpdateParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if !params.Capacity.Valid() {
		return ErrInvalidCapacity
	}
	if params.NightlyRate.Amount < 0 {
		return ErrNightlyRate
	}
	if !params.Address.Valid() {
		return ErrAddressIncomplete
	}
	l.Title = strings.TrimSpace(params.Title)
	l.Description = strings.TrimSpace(params.Description)
	l.TypeOfPlace = strings.TrimSpace(params.TypeOfPlace)
	l.PropertyType = strings.TrimSpace(params.PropertyType)
	l.Address = params.Address
	l.Amenities = append([]string(nil), params.Amenities...)
	l.Capacity = params.Capacity
	l.NightlyRate = params.NightlyRate
	l.ThumbnailURL = strings.TrimSpace(params.ThumbnailURL)
	l.Photos = append([]string(nil), params.Photos...)
	l.UpdatedAt = params.Now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

func (l *Listing) MarkUnavailable(now time.Time) error {
	if l.Status != StatusAvailable {
		return ErrInvalidState
	}
	l.Status = StatusUnavailable
	l.UpdatedAt = now.UTC()
	l.Record(ListingStatusChangedEvent{ListingID: l.ID, Status: l.Status, At: l.UpdatedAt})
	return nil
}

func (l *Listing) MarkAvailable(now time.Time) error {
	if l.Status != StatusUnavailable {
		return ErrInvalidState
	}
	l.Status = StatusAvailable
	l.UpdatedAt = now.UTC()
	l.Record(ListingStatusChangedEvent{ListingID: l.ID, Status: l.Status, At: l.UpdatedAt})
	return nil
}

// AddReviewRef appends a review id to the listing's ordered review set.
func (l *Listing) AddReviewRef(reviewID string) {
	for _, id := range l.Reviews {
		if id == reviewID {
			return
		}
	}
	l.Reviews = append(l.Reviews, reviewID)
}

// RemoveReviewRef drops a review id; missing ids are ignored.
func (l *Listing) RemoveReviewRef(reviewID string) {
	kept := l.Reviews[:0]
	for _, id := range l.Reviews {
		if id != reviewID {
			kept = append(kept, id)
		}
	}
	l.Reviews = kept
}

// ApplyReviewAggregate replaces the denormalized rating cache in one step.
// The average is rounded to one decimal; an empty review set resets both
// fields to zero.
func (l *Listing) ApplyReviewAggregate(sumRatings, count int, now time.Time) {
	l.ReviewCount = count
	if count > 0 {
		l.AvgRating = math.Round(float64(sumRatings)/float64(count)*10) / 10
	} else {
		l.AvgRating = 0
	}
	l.UpdatedAt = now.UTC()
	l.Record(ListingRatingRecalculatedEvent{ListingID: l.ID, AvgRating: l.AvgRating, ReviewCount: l.ReviewCount, At: l.UpdatedAt})
}
