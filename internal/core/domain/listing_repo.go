package domain

import "context"

type ListingRepository interface {
	// AddListing stores a new active listing, failing if one already exists
	// for the same asset.
	AddListing(ctx context.Context, listing Listing) error
	// GetListing returns the active listing for the asset, or nil if the
	// asset is not listed.
	GetListing(ctx context.Context, asset AssetRef) (*Listing, error)
	// DeleteListing removes the active listing for the asset and returns the
	// deleted record, or nil if the asset was not listed.
	DeleteListing(ctx context.Context, asset AssetRef) (*Listing, error)
	GetAllListings(ctx context.Context) ([]Listing, error)
	GetListingsBySeller(ctx context.Context, seller string) ([]Listing, error)
	Close()
}
