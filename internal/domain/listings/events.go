package listings

import (
	"time"
)

type ListingCreatedEvent struct {
	ListingID ListingID
	Owner     OwnerID
	At        time.Time
}

func (e ListingCreatedEvent) EventName() string     { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreatedEvent) OccurredAt() time.Time { return e.At }

type ListingUpdatedEvent struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingUpdatedEvent) EventName() string     { return "listing.updated" }
func (e ListingUpdatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdatedEvent) OccurredAt() time.Time { return e.At }

type ListingStatusChangedEvent struct {
	ListingID ListingID
	Status    Status
	At        time.Time
}

func (e ListingStatusChangedEvent) EventName() string     { return "listing.status_changed" }
func (e ListingStatusChangedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingStatusChangedEvent) OccurredAt() time.Time { return e.At }

type ListingRatingRecalculatedEvent struct {
	ListingID   ListingID
	AvgRating   float64
	ReviewCount int
	At          time.Time
}

func (e ListingRatingRecalculatedEvent) EventName() string     { return "listing.rating_recalculated" }
func (e ListingRatingRecalculatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingRatingRecalculatedEvent) OccurredAt() time.Time { return e.At }

type ListingDeletedEvent struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingDeletedEvent) EventName() string     { return "listing.deleted" }
func (e ListingDeletedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingDeletedEvent) OccurredAt() time.Time { return e.At }
