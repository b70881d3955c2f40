package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "globalstay/internal/domain/availability"
	"globalstay/internal/domain/listings"
	domainrange "globalstay/internal/domain/shared/daterange"
)

type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection("agg_calendar")}
}

// Calendar loads the listing's calendar, returning an empty one when none
// has been written yet.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id listings.ListingID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save writes the calendar under a version filter. This is the write that
// serializes racing bookings for the same listing: the loser of the race
// matches zero documents and gets ErrConcurrentUpdate.
func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	doc := newCalendarDocument(calendar)
	filter := bson.M{"_id": doc.ID, "version": calendar.Version}
	doc.Version = calendar.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	calendar.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID      string          `bson:"_id"`
	Blocks  []blockDocument `bson:"blocks"`
	Version int64           `bson:"version"`
}

type blockDocument struct {
	CheckIn   int64  `bson:"check_in"`
	CheckOut  int64  `bson:"check_out"`
	BookingID string `bson:"booking_id"`
	CreatedAt int64  `bson:"created_at"`
}

func newCalendarDocument(calendar *domainavailability.Calendar) calendarDocument {
	blocks := make([]blockDocument, 0, len(calendar.Blocks))
	for _, block := range calendar.Blocks {
		blocks = append(blocks, blockDocument{
			CheckIn:   block.Range.CheckIn.UnixMilli(),
			CheckOut:  block.Range.CheckOut.UnixMilli(),
			BookingID: block.BookingID,
			CreatedAt: block.CreatedAt.UnixMilli(),
		})
	}
	return calendarDocument{
		ID:      string(calendar.ListingID),
		Blocks:  blocks,
		Version: calendar.Version,
	}
}

func (d calendarDocument) toAggregate() *domainavailability.Calendar {
	blocks := make([]domainavailability.Block, 0, len(d.Blocks))
	for _, block := range d.Blocks {
		blocks = append(blocks, domainavailability.Block{
			Range: domainrange.DateRange{
				CheckIn:  timestampToTime(block.CheckIn),
				CheckOut: timestampToTime(block.CheckOut),
			},
			BookingID: block.BookingID,
			CreatedAt: timestampToTime(block.CreatedAt),
		})
	}
	return &domainavailability.Calendar{
		ListingID: listings.ListingID(d.ID),
		Blocks:    blocks,
		Version:   d.Version,
	}
}

var _ domainavailability.Repository = (*AvailabilityRepository)(nil)
