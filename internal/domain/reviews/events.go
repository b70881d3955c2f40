package reviews

import (
	"time"

	"globalstay/internal/domain/listings"
)

type ReviewAdded struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	AuthorID  string
	Rating    int
	At        time.Time
}

func (e ReviewAdded) EventName() string     { return "review.added" }
func (e ReviewAdded) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewAdded) OccurredAt() time.Time { return e.At }

type ReviewDeleted struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	At        time.Time
}

func (e ReviewDeleted) EventName() string     { return "review.deleted" }
func (e ReviewDeleted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewDeleted) OccurredAt() time.Time { return e.At }
