package dto

import (
	"time"

	domainlistings "globalstay/internal/domain/listings"
)

// ListingAddress is the public location snapshot.
type ListingAddress struct {
	HouseNumber  string  `json:"house_number,omitempty"`
	BuildingName string  `json:"building_name,omitempty"`
	Street       string  `json:"street"`
	City         string  `json:"city"`
	State        string  `json:"state,omitempty"`
	PostalCode   string  `json:"postal_code,omitempty"`
	Country      string  `json:"country"`
	Lat          float64 `json:"lat,omitempty"`
	Lon          float64 `json:"lon,omitempty"`
}

type ListingCapacity struct {
	Guests    int `json:"guests"`
	Bedrooms  int `json:"bedrooms"`
	Bathrooms int `json:"bathrooms"`
}

type ListingOwner struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ListingDetail is the full listing read model: attributes plus the
// populated reviews and the occupied date windows clients need to render
// a booking form.
type ListingDetail struct {
	ID           string          `json:"id"`
	Owner        ListingOwner    `json:"owner"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	TypeOfPlace  string          `json:"type_of_place"`
	PropertyType string          `json:"property_type"`
	Address      ListingAddress  `json:"address"`
	Amenities    []string        `json:"amenities"`
	Capacity     ListingCapacity `json:"capacity"`
	NightlyRate  MoneyDTO        `json:"nightly_rate"`
	Status       string          `json:"status"`
	AvgRating    float64         `json:"avg_rating"`
	ReviewCount  int             `json:"review_count"`
	ThumbnailURL string          `json:"thumbnail_url,omitempty"`
	Photos       []string        `json:"photos"`
	Reviews      []Review        `json:"reviews"`
	BookedRanges []BookedRange   `json:"booked_ranges"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CatalogItem is the compact card used by search results.
type CatalogItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	PropertyType string   `json:"property_type"`
	NightlyRate  MoneyDTO `json:"nightly_rate"`
	AvgRating    float64  `json:"avg_rating"`
	ReviewCount  int      `json:"review_count"`
	MaxGuests    int      `json:"max_guests"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
}

type CatalogPage struct {
	Items  []CatalogItem `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func MapListingAddress(a domainlistings.Address) ListingAddress {
	return ListingAddress{
		HouseNumber:  a.HouseNumber,
		BuildingName: a.BuildingName,
		Street:       a.Street,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		Lat:          a.Lat,
		Lon:          a.Lon,
	}
}

func MapListingDetail(listing *domainlistings.Listing, ownerName string, reviews []Review, booked []BookedRange) ListingDetail {
	if listing == nil {
		return ListingDetail{}
	}
	if reviews == nil {
		reviews = []Review{}
	}
	if booked == nil {
		booked = []BookedRange{}
	}
	return ListingDetail{
		ID:           string(listing.ID),
		Owner:        ListingOwner{ID: string(listing.Owner), Name: ownerName},
		Title:        listing.Title,
		Description:  listing.Description,
		TypeOfPlace:  listing.TypeOfPlace,
		PropertyType: listing.PropertyType,
		Address:      MapListingAddress(listing.Address),
		Amenities:    append([]string{}, listing.Amenities...),
		Capacity: ListingCapacity{
			Guests:    listing.Capacity.Guests,
			Bedrooms:  listing.Capacity.Bedrooms,
			Bathrooms: listing.Capacity.Bathrooms,
		},
		NightlyRate:  MapMoney(listing.NightlyRate),
		Status:       string(listing.Status),
		AvgRating:    listing.AvgRating,
		ReviewCount:  listing.ReviewCount,
		ThumbnailURL: listing.ThumbnailURL,
		Photos:       append([]string{}, listing.Photos...),
		Reviews:      reviews,
		BookedRanges: booked,
		CreatedAt:    listing.CreatedAt,
		UpdatedAt:    listing.UpdatedAt,
	}
}

func MapCatalogItem(listing *domainlistings.Listing) CatalogItem {
	if listing == nil {
		return CatalogItem{}
	}
	return CatalogItem{
		ID:           string(listing.ID),
		Title:        listing.Title,
		City:         listing.Address.City,
		Country:      listing.Address.Country,
		PropertyType: listing.PropertyType,
		NightlyRate:  MapMoney(listing.NightlyRate),
		AvgRating:    listing.AvgRating,
		ReviewCount:  listing.ReviewCount,
		MaxGuests:    listing.Capacity.Guests,
		ThumbnailURL: listing.ThumbnailURL,
	}
}
