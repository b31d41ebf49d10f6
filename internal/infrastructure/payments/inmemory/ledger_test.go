package inmemoryledger_test

import (
	"context"
	"testing"

	inmemoryledger "github.com/nc80sp/marketd/internal/infrastructure/payments/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositAndBalance(t *testing.T) {
	ctx := context.Background()
	ledger := inmemoryledger.NewValueLedger()

	balance, err := ledger.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	require.NoError(t, ledger.Deposit(ctx, "alice", 100))
	require.NoError(t, ledger.Deposit(ctx, "alice", 50))

	balance, err = ledger.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(150), balance)

	require.Error(t, ledger.Deposit(ctx, "", 1))
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves value between accounts", func(t *testing.T) {
		ledger := inmemoryledger.NewValueLedger()
		require.NoError(t, ledger.Deposit(ctx, "alice", 100))

		require.NoError(t, ledger.Transfer(ctx, "alice", "bob", 60))

		aliceBalance, err := ledger.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(40), aliceBalance)

		bobBalance, err := ledger.BalanceOf(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, uint64(60), bobBalance)
	})

	t.Run("rejects overdraft without partial effect", func(t *testing.T) {
		ledger := inmemoryledger.NewValueLedger()
		require.NoError(t, ledger.Deposit(ctx, "alice", 10))

		require.Error(t, ledger.Transfer(ctx, "alice", "bob", 11))

		aliceBalance, err := ledger.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(10), aliceBalance)

		bobBalance, err := ledger.BalanceOf(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), bobBalance)
	})

	t.Run("rejects zero amount and missing accounts", func(t *testing.T) {
		ledger := inmemoryledger.NewValueLedger()
		require.NoError(t, ledger.Deposit(ctx, "alice", 10))

		require.Error(t, ledger.Transfer(ctx, "alice", "bob", 0))
		require.Error(t, ledger.Transfer(ctx, "", "bob", 1))
		require.Error(t, ledger.Transfer(ctx, "alice", "", 1))
	})

	t.Run("refund restores the original balances", func(t *testing.T) {
		ledger := inmemoryledger.NewValueLedger()
		require.NoError(t, ledger.Deposit(ctx, "alice", 100))

		require.NoError(t, ledger.Transfer(ctx, "alice", "bob", 100))
		require.NoError(t, ledger.Transfer(ctx, "bob", "alice", 100))

		aliceBalance, err := ledger.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(100), aliceBalance)

		bobBalance, err := ledger.BalanceOf(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), bobBalance)
	})
}
