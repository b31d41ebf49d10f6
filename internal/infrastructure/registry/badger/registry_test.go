package badgerregistry_test

import (
	"context"
	"testing"

	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/internal/infrastructure/registry"
	badgerregistry "github.com/nc80sp/marketd/internal/infrastructure/registry/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operator = "market"

func newRegistry(t *testing.T) registry.Registry {
	t.Helper()

	reg, err := badgerregistry.NewOwnershipRegistry(operator, "", nil)
	require.NoError(t, err)
	t.Cleanup(reg.Close)
	return reg
}

func TestMintAssignsSerialsPerCollection(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	first, err := reg.Mint(ctx, "punks", "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetRef{Collection: "punks", Serial: 0}, first)

	second, err := reg.Mint(ctx, "punks", "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), second.Serial)

	cats, err := reg.Mint(ctx, "cats", "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cats.Serial)
}

func TestTransferGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path consumes approval", func(t *testing.T) {
		reg := newRegistry(t)
		asset, err := reg.Mint(ctx, "punks", "alice")
		require.NoError(t, err)
		require.NoError(t, reg.Approve(ctx, asset, "alice", operator))

		require.NoError(t, reg.Transfer(ctx, asset, "alice", "bob"))

		owner, err := reg.OwnerOf(ctx, asset)
		require.NoError(t, err)
		assert.Equal(t, "bob", owner)

		authorized, err := reg.IsAuthorized(ctx, asset, operator)
		require.NoError(t, err)
		require.False(t, authorized)
	})

	t.Run("rejects non-owner source", func(t *testing.T) {
		reg := newRegistry(t)
		asset, err := reg.Mint(ctx, "punks", "alice")
		require.NoError(t, err)
		require.NoError(t, reg.Approve(ctx, asset, "alice", operator))

		require.Error(t, reg.Transfer(ctx, asset, "bob", "carol"))
	})

	t.Run("rejects unauthorized operator", func(t *testing.T) {
		reg := newRegistry(t)
		asset, err := reg.Mint(ctx, "punks", "alice")
		require.NoError(t, err)

		require.Error(t, reg.Transfer(ctx, asset, "alice", "bob"))
	})

	t.Run("operator-for-all grant survives transfers", func(t *testing.T) {
		reg := newRegistry(t)
		asset, err := reg.Mint(ctx, "punks", "alice")
		require.NoError(t, err)
		require.NoError(t, reg.SetApprovalForAll(ctx, "alice", operator, true))

		require.NoError(t, reg.Transfer(ctx, asset, "alice", "bob"))

		other, err := reg.Mint(ctx, "punks", "alice")
		require.NoError(t, err)
		authorized, err := reg.IsAuthorized(ctx, other, operator)
		require.NoError(t, err)
		require.True(t, authorized)
	})
}

func TestApproveByOperatorForAll(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	asset, err := reg.Mint(ctx, "punks", "alice")
	require.NoError(t, err)

	require.Error(t, reg.Approve(ctx, asset, "bob", operator))

	require.NoError(t, reg.SetApprovalForAll(ctx, "alice", "bob", true))
	require.NoError(t, reg.Approve(ctx, asset, "bob", operator))

	authorized, err := reg.IsAuthorized(ctx, asset, operator)
	require.NoError(t, err)
	require.True(t, authorized)
}
