package reviews

import (
	"context"
	"time"

	"globalstay/internal/app/uow"
	domainlistings "globalstay/internal/domain/listings"
	domainreviews "globalstay/internal/domain/reviews"
)

// recalculateListingRating recomputes the listing's denormalized rating
// cache from the full review set referenced by the listing. There is no
// incremental adjustment path: every review mutation loads all remaining
// reviews and rebuilds the sum, so the cache can never drift. A load
// failure aborts the enclosing transaction rather than persisting a
// partial aggregate.
func recalculateListingRating(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing, now time.Time) error {
	ids := make([]domainreviews.ReviewID, 0, len(listing.Reviews))
	for _, id := range listing.Reviews {
		ids = append(ids, domainreviews.ReviewID(id))
	}

	loaded, err := unit.Reviews().ByIDs(ctx, ids)
	if err != nil {
		return err
	}

	sum := 0
	count := 0
	for _, review := range loaded {
		if review == nil {
			continue
		}
		sum += review.Rating
		count++
	}

	listing.ApplyReviewAggregate(sum, count, now)
	return nil
}
