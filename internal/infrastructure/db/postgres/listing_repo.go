package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/nc80sp/marketd/internal/core/domain"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(config ...interface{}) (domain.ListingRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config: expected 1 argument, got %d", len(config))
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf(
			"cannot open listing repository: expected *sql.DB but got %T", config[0],
		)
	}

	return &listingRepository{db}, nil
}

func (r *listingRepository) AddListing(ctx context.Context, listing domain.Listing) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO listing (asset, collection, serial, seller, price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		listing.Asset.String(), listing.Asset.Collection, int64(listing.Asset.Serial),
		listing.Seller, int64(listing.Price), listing.CreatedAt,
	)
	if err != nil {
		var dbErr *pq.Error
		// 23505: unique_violation on the asset primary key.
		if errors.As(err, &dbErr) && dbErr.Code == "23505" {
			return fmt.Errorf("listing already exists for asset %s", listing.Asset)
		}
		return fmt.Errorf("failed to add listing: %w", err)
	}
	return nil
}

func (r *listingRepository) GetListing(
	ctx context.Context, asset domain.AssetRef,
) (*domain.Listing, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT collection, serial, seller, price, created_at FROM listing WHERE asset = $1`,
		asset.String(),
	)
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (r *listingRepository) DeleteListing(
	ctx context.Context, asset domain.AssetRef,
) (*domain.Listing, error) {
	row := r.db.QueryRowContext(
		ctx,
		`DELETE FROM listing WHERE asset = $1
		 RETURNING collection, serial, seller, price, created_at`,
		asset.String(),
	)
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete listing: %w", err)
	}
	return listing, nil
}

func (r *listingRepository) GetAllListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT collection, serial, seller, price, created_at FROM listing
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	// nolint:all
	defer rows.Close()

	return scanListings(rows)
}

func (r *listingRepository) GetListingsBySeller(
	ctx context.Context, seller string,
) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT collection, serial, seller, price, created_at FROM listing
		 WHERE seller = $1 ORDER BY created_at`,
		seller,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings by seller: %w", err)
	}
	// nolint:all
	defer rows.Close()

	return scanListings(rows)
}

func (r *listingRepository) Close() {
	// nolint:all
	r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var collection, seller string
	var serial, price, createdAt int64
	if err := row.Scan(&collection, &serial, &seller, &price, &createdAt); err != nil {
		return nil, err
	}
	return &domain.Listing{
		Asset:     domain.AssetRef{Collection: collection, Serial: uint64(serial)},
		Seller:    seller,
		Price:     uint64(price),
		CreatedAt: createdAt,
	}, nil
}

func scanListings(rows *sql.Rows) ([]domain.Listing, error) {
	listings := make([]domain.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *listing)
	}
	return listings, rows.Err()
}
