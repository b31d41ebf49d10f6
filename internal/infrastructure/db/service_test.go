package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/internal/core/ports"
	"github.com/nc80sp/marketd/internal/infrastructure/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoManager(t *testing.T) ports.RepoManager {
	t.Helper()

	repo, err := db.NewService(db.ServiceConfig{
		DataStoreType:   "badger",
		DataStoreConfig: []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo
}

func TestNewServiceRejectsUnknownStoreType(t *testing.T) {
	_, err := db.NewService(db.ServiceConfig{DataStoreType: "bolt"})
	require.Error(t, err)
}

func TestListingRepository(t *testing.T) {
	ctx := context.Background()

	asset := domain.AssetRef{Collection: "punks", Serial: 0}
	listing := domain.Listing{
		Asset:     asset,
		Seller:    "alice",
		Price:     100,
		CreatedAt: time.Now().Unix(),
	}

	t.Run("add and get", func(t *testing.T) {
		repo := newRepoManager(t)

		got, err := repo.Listings().GetListing(ctx, asset)
		require.NoError(t, err)
		require.Nil(t, got)

		require.NoError(t, repo.Listings().AddListing(ctx, listing))

		got, err = repo.Listings().GetListing(ctx, asset)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, listing, *got)
	})

	t.Run("add rejects duplicate key", func(t *testing.T) {
		repo := newRepoManager(t)

		require.NoError(t, repo.Listings().AddListing(ctx, listing))
		require.Error(t, repo.Listings().AddListing(ctx, listing))
	})

	t.Run("delete returns the deleted record", func(t *testing.T) {
		repo := newRepoManager(t)

		deleted, err := repo.Listings().DeleteListing(ctx, asset)
		require.NoError(t, err)
		require.Nil(t, deleted)

		require.NoError(t, repo.Listings().AddListing(ctx, listing))

		deleted, err = repo.Listings().DeleteListing(ctx, asset)
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, listing, *deleted)

		got, err := repo.Listings().GetListing(ctx, asset)
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("queries by seller", func(t *testing.T) {
		repo := newRepoManager(t)

		other := listing
		other.Asset = domain.AssetRef{Collection: "punks", Serial: 1}
		third := listing
		third.Asset = domain.AssetRef{Collection: "punks", Serial: 2}
		third.Seller = "carol"

		require.NoError(t, repo.Listings().AddListing(ctx, listing))
		require.NoError(t, repo.Listings().AddListing(ctx, other))
		require.NoError(t, repo.Listings().AddListing(ctx, third))

		bySeller, err := repo.Listings().GetListingsBySeller(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, bySeller, 2)

		all, err := repo.Listings().GetAllListings(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
	})
}

func TestMarketEventRepository(t *testing.T) {
	ctx := context.Background()

	asset := domain.AssetRef{Collection: "punks", Serial: 0}
	other := domain.AssetRef{Collection: "punks", Serial: 1}

	newEvent := func(eventType domain.EventType, asset domain.AssetRef, ts int64) domain.MarketEvent {
		return domain.MarketEvent{
			Id:        uuid.NewString(),
			Type:      eventType,
			Asset:     asset,
			Seller:    "alice",
			Price:     100,
			Timestamp: ts,
		}
	}

	t.Run("append and query by asset", func(t *testing.T) {
		repo := newRepoManager(t)

		created := newEvent(domain.EventTypeListingCreated, asset, 1)
		purchased := newEvent(domain.EventTypeListingPurchased, asset, 2)
		unrelated := newEvent(domain.EventTypeListingCreated, other, 3)

		require.NoError(t, repo.MarketEvents().Append(
			ctx, []domain.MarketEvent{created, purchased, unrelated},
		))

		events, err := repo.MarketEvents().GetEventsByAsset(ctx, asset)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, created.Id, events[0].Id)
		assert.Equal(t, purchased.Id, events[1].Id)

		all, err := repo.MarketEvents().GetAllEvents(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
	})

	t.Run("preserves insertion order within the same second", func(t *testing.T) {
		repo := newRepoManager(t)

		created := newEvent(domain.EventTypeListingCreated, asset, 1)
		canceled := newEvent(domain.EventTypeListingCanceled, asset, 1)
		relisted := newEvent(domain.EventTypeListingCreated, asset, 1)
		purchased := newEvent(domain.EventTypeListingPurchased, asset, 1)

		for _, event := range []domain.MarketEvent{created, canceled, relisted, purchased} {
			require.NoError(t, repo.MarketEvents().Append(ctx, []domain.MarketEvent{event}))
		}

		events, err := repo.MarketEvents().GetEventsByAsset(ctx, asset)
		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, created.Id, events[0].Id)
		assert.Equal(t, canceled.Id, events[1].Id)
		assert.Equal(t, relisted.Id, events[2].Id)
		assert.Equal(t, purchased.Id, events[3].Id)
	})

	t.Run("append is idempotent per event id", func(t *testing.T) {
		repo := newRepoManager(t)

		event := newEvent(domain.EventTypeListingCreated, asset, 1)
		require.NoError(t, repo.MarketEvents().Append(ctx, []domain.MarketEvent{event}))
		require.NoError(t, repo.MarketEvents().Append(ctx, []domain.MarketEvent{event}))

		events, err := repo.MarketEvents().GetAllEvents(ctx)
		require.NoError(t, err)
		require.Len(t, events, 1)
	})
}
