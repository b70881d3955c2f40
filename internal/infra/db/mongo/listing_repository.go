package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "globalstay/internal/domain/listings"
	"globalstay/internal/domain/shared/money"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
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
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

// Search translates catalog filters into a mongo query. Token filters
// (amenities, property types) use $all / $in over lowercased stored values;
// free-text location search uses case-insensitive regexes over the address
// fields and title.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := bson.M{}

	if opts.OnlyAvailable {
		filter["status"] = string(domainlistings.StatusAvailable)
	}
	if opts.Owner != "" {
		filter["owner_id"] = string(opts.Owner)
	}
	if len(opts.Statuses) > 0 {
		statuses := make([]string, 0, len(opts.Statuses))
		for _, s := range opts.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	if opts.City != "" {
		filter["address.city"] = caseInsensitive(opts.City)
	}
	if opts.Country != "" {
		filter["address.country"] = caseInsensitive(opts.Country)
	}
	if opts.LocationQuery != "" {
		pattern := regexEscape(opts.LocationQuery)
		filter["$or"] = bson.A{
			bson.M{"address.city": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"address.state": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"address.country": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"address.street": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if opts.MinGuests > 0 {
		filter["capacity.guests"] = bson.M{"$gte": opts.MinGuests}
	}
	price := bson.M{}
	if opts.PriceMinCents > 0 {
		price["$gte"] = opts.PriceMinCents
	}
	if opts.PriceMaxCents > 0 {
		price["$lte"] = opts.PriceMaxCents
	}
	if len(price) > 0 {
		filter["nightly_rate.amount"] = price
	}
	if len(opts.Amenities) > 0 {
		filter["amenities_norm"] = bson.M{"$all": opts.Amenities}
	}
	if len(opts.PropertyTypes) > 0 {
		filter["property_type_norm"] = bson.M{"$in": opts.PropertyTypes}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}

	findOpts := options.Find().
		SetSort(sortSpec(opts.Sort)).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))

	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	items := make([]*domainlistings.Listing, 0)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainlistings.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

func sortSpec(sort domainlistings.CatalogSort) bson.D {
	switch sort {
	case domainlistings.SortByPriceDesc:
		return bson.D{{Key: "nightly_rate.amount", Value: -1}, {Key: "avg_rating", Value: -1}}
	case domainlistings.SortByRating:
		return bson.D{{Key: "avg_rating", Value: -1}, {Key: "review_count", Value: -1}}
	case domainlistings.SortByNewest:
		return bson.D{{Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "nightly_rate.amount", Value: 1}, {Key: "avg_rating", Value: -1}}
	}
}

func caseInsensitive(value string) bson.M {
	return bson.M{"$regex": "^" + regexEscape(value) + "$", "$options": "i"}
}

func regexEscape(value string) string {
	specials := `\.+*?()|[]{}^$`
	var b strings.Builder
	for _, r := range value {
		if strings.ContainsRune(specials, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type listingDocument struct {
	ID               string          `bson:"_id"`
	OwnerID          string          `bson:"owner_id"`
	Title            string          `bson:"title"`
	Description      string          `bson:"description"`
	TypeOfPlace      string          `bson:"type_of_place"`
	PropertyType     string          `bson:"property_type"`
	PropertyTypeNorm string          `bson:"property_type_norm"`
	Address          addressDocument `bson:"address"`
	Amenities        []string        `bson:"amenities"`
	AmenitiesNorm    []string        `bson:"amenities_norm"`
	Capacity         capacityDoc     `bson:"capacity"`
	NightlyRate      moneyDocument   `bson:"nightly_rate"`
	Status           string          `bson:"status"`
	Reviews          []string        `bson:"reviews"`
	AvgRating        float64         `bson:"avg_rating"`
	ReviewCount      int             `bson:"review_count"`
	ThumbnailURL     string          `bson:"thumbnail_url"`
	Photos           []string        `bson:"photos"`
	CreatedAt        int64           `bson:"created_at"`
	UpdatedAt        int64           `bson:"updated_at"`
	Version          int64           `bson:"version"`
}

type addressDocument struct {
	HouseNumber  string  `bson:"house_number"`
	BuildingName string  `bson:"building_name"`
	Street       string  `bson:"street"`
	City         string  `bson:"city"`
	State        string  `bson:"state"`
	PostalCode   string  `bson:"postal_code"`
	Country      string  `bson:"country"`
	Lat          float64 `bson:"lat"`
	Lon          float64 `bson:"lon"`
}

type capacityDoc struct {
	Guests    int `bson:"guests"`
	Bedrooms  int `bson:"bedrooms"`
	Bathrooms int `bson:"bathrooms"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	amenitiesNorm := make([]string, 0, len(l.Amenities))
	for _, a := range l.Amenities {
		amenitiesNorm = append(amenitiesNorm, strings.ToLower(strings.TrimSpace(a)))
	}
	return listingDocument{
		ID:               string(l.ID),
		OwnerID:          string(l.Owner),
		Title:            l.Title,
		Description:      l.Description,
		TypeOfPlace:      l.TypeOfPlace,
		PropertyType:     l.PropertyType,
		PropertyTypeNorm: strings.ToLower(strings.TrimSpace(l.PropertyType)),
		Address: addressDocument{
			HouseNumber:  l.Address.HouseNumber,
			BuildingName: l.Address.BuildingName,
			Street:       l.Address.Street,
			City:         l.Address.City,
			State:        l.Address.State,
			PostalCode:   l.Address.PostalCode,
			Country:      l.Address.Country,
			Lat:          l.Address.Lat,
			Lon:          l.Address.Lon,
		},
		Amenities:     l.Amenities,
		AmenitiesNorm: amenitiesNorm,
		Capacity: capacityDoc{
			Guests:    l.Capacity.Guests,
			Bedrooms:  l.Capacity.Bedrooms,
			Bathrooms: l.Capacity.Bathrooms,
		},
		NightlyRate:  moneyDocument{Amount: l.NightlyRate.Amount, Currency: l.NightlyRate.Currency},
		Status:       string(l.Status),
		Reviews:      l.Reviews,
		AvgRating:    l.AvgRating,
		ReviewCount:  l.ReviewCount,
		ThumbnailURL: l.ThumbnailURL,
		Photos:       l.Photos,
		CreatedAt:    l.CreatedAt.UnixMilli(),
		UpdatedAt:    l.UpdatedAt.UnixMilli(),
		Version:      l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:           domainlistings.ListingID(d.ID),
		Owner:        domainlistings.OwnerID(d.OwnerID),
		Title:        d.Title,
		Description:  d.Description,
		TypeOfPlace:  d.TypeOfPlace,
		PropertyType: d.PropertyType,
		Address: domainlistings.Address{
			HouseNumber:  d.Address.HouseNumber,
			BuildingName: d.Address.BuildingName,
			Street:       d.Address.Street,
			City:         d.Address.City,
			State:        d.Address.State,
			PostalCode:   d.Address.PostalCode,
			Country:      d.Address.Country,
			Lat:          d.Address.Lat,
			Lon:          d.Address.Lon,
		},
		Amenities: d.Amenities,
		Capacity: domainlistings.Capacity{
			Guests:    d.Capacity.Guests,
			Bedrooms:  d.Capacity.Bedrooms,
			Bathrooms: d.Capacity.Bathrooms,
		},
		NightlyRate:  money.Money{Amount: d.NightlyRate.Amount, Currency: d.NightlyRate.Currency},
		Status:       domainlistings.Status(d.Status),
		Reviews:      d.Reviews,
		AvgRating:    d.AvgRating,
		ReviewCount:  d.ReviewCount,
		ThumbnailURL: d.ThumbnailURL,
		Photos:       d.Photos,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
