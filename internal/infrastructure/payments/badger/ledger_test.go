package badgerledger_test

import (
	"context"
	"testing"

	badgerledger "github.com/nc80sp/marketd/internal/infrastructure/payments/badger"
	"github.com/nc80sp/marketd/internal/infrastructure/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) payments.Ledger {
	t.Helper()

	ledger, err := badgerledger.NewValueLedger("", nil)
	require.NoError(t, err)
	t.Cleanup(ledger.Close)
	return ledger
}

func TestDepositTransferBalance(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	balance, err := ledger.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	require.NoError(t, ledger.Deposit(ctx, "alice", 100))
	require.NoError(t, ledger.Transfer(ctx, "alice", "bob", 70))

	aliceBalance, err := ledger.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(30), aliceBalance)

	bobBalance, err := ledger.BalanceOf(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(70), bobBalance)
}

func TestTransferOverdraft(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	require.NoError(t, ledger.Deposit(ctx, "alice", 10))
	require.Error(t, ledger.Transfer(ctx, "alice", "bob", 11))

	aliceBalance, err := ledger.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), aliceBalance)
}

func TestSelfTransferIsNoop(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	require.NoError(t, ledger.Deposit(ctx, "alice", 10))
	require.NoError(t, ledger.Transfer(ctx, "alice", "alice", 10))

	balance, err := ledger.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)
}
