package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const listingStoreDir = "listings"

type listingRepository struct {
	store *badgerhold.Store
}

func NewListingRepository(config ...interface{}) (domain.ListingRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, listingStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing store: %s", err)
	}

	return &listingRepository{store}, nil
}

func (r *listingRepository) AddListing(ctx context.Context, listing domain.Listing) error {
	insertFn := func() error {
		return r.store.Insert(listing.Asset.String(), listing)
	}
	if err := insertFn(); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("listing already exists for asset %s", listing.Asset)
		}
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = insertFn()
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *listingRepository) GetListing(
	ctx context.Context, asset domain.AssetRef,
) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.store.Get(asset.String(), &listing)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

func (r *listingRepository) DeleteListing(
	ctx context.Context, asset domain.AssetRef,
) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.store.Get(asset.String(), &listing)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	deleteFn := func() error {
		return r.store.Delete(asset.String(), domain.Listing{})
	}
	if err := deleteFn(); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = deleteFn()
				attempts++
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return &listing, nil
}

func (r *listingRepository) GetAllListings(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	if err := r.store.Find(&listings, nil); err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

func (r *listingRepository) GetListingsBySeller(
	ctx context.Context, seller string,
) ([]domain.Listing, error) {
	query := badgerhold.Where("Seller").Eq(seller)
	var listings []domain.Listing
	if err := r.store.Find(&listings, query); err != nil {
		return nil, fmt.Errorf("failed to list listings by seller: %w", err)
	}
	return listings, nil
}

func (r *listingRepository) Close() {
	// nolint:all
	r.store.Close()
}
