package scraper

import (
	"context"
	"time"

	"cyleria_watcher/models"
)

// ListingSource produces the full current house listing.
type ListingSource interface {
	FetchListing(ctx context.Context) ([]models.Listing, error)
}

// LoginSource looks up when a character last logged in. A nil time with a
// nil error means the character has no usable login data.
type LoginSource interface {
	FetchLastLogin(ctx context.Context, owner string) (*time.Time, error)
}
