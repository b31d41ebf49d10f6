package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nc80sp/marketd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicesBuiltOnce(t *testing.T) {
	ctx := context.Background()

	datadir := t.TempDir()
	cfg := &config.Config{
		Datadir:  datadir,
		LogLevel: 4,
		DbType:   "badger",
		DbDir:    filepath.Join(datadir, "db"),
		Operator: "market",
	}
	t.Cleanup(cfg.Close)

	require.NoError(t, cfg.Validate())

	// Same order as the list command: the registry is used to grant the
	// operator approval before the market service is built. Both must end
	// up sharing one registry instance, the badger dir cannot be opened
	// twice.
	registry, err := cfg.OwnershipRegistry()
	require.NoError(t, err)

	asset, err := registry.Mint(ctx, "punks", "alice")
	require.NoError(t, err)
	require.NoError(t, registry.Approve(ctx, asset, "alice", cfg.Operator))

	svc, err := cfg.MarketService()
	require.NoError(t, err)
	require.Nil(t, svc.ListItem(ctx, asset, 100, "alice"))

	listing, err := svc.GetListing(ctx, asset)
	require.NoError(t, err)
	require.True(t, listing.Active())

	again, err := cfg.OwnershipRegistry()
	require.NoError(t, err)
	assert.Same(t, registry, again)

	svcAgain, err := cfg.MarketService()
	require.NoError(t, err)
	assert.Same(t, svc, svcAgain)
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{DbType: "mongodb", Operator: "market"}
	require.Error(t, cfg.Validate())

	cfg = &config.Config{DbType: "badger"}
	require.Error(t, cfg.Validate())

	cfg = &config.Config{DbType: "badger", Operator: "market"}
	require.NoError(t, cfg.Validate())
}
