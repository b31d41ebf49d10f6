package inmemoryledger

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/nc80sp/marketd/internal/infrastructure/payments"
)

type valueLedger struct {
	lock     *sync.RWMutex
	balances map[string]uint64
}

func NewValueLedger() payments.Ledger {
	return &valueLedger{
		lock:     &sync.RWMutex{},
		balances: make(map[string]uint64),
	}
}

func (l *valueLedger) Transfer(_ context.Context, from, to string, amount uint64) error {
	if from == "" || to == "" {
		return fmt.Errorf("missing transfer account")
	}
	if amount == 0 {
		return fmt.Errorf("cannot transfer zero amount")
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if l.balances[from] < amount {
		return fmt.Errorf(
			"insufficient balance for %s: have %d, need %d", from, l.balances[from], amount,
		)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

func (l *valueLedger) BalanceOf(_ context.Context, account string) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.balances[account], nil
}

func (l *valueLedger) Close() {}

func (l *valueLedger) Deposit(_ context.Context, account string, amount uint64) error {
	if account == "" {
		return fmt.Errorf("missing account")
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if l.balances[account] > math.MaxUint64-amount {
		return fmt.Errorf("balance overflow for %s", account)
	}
	l.balances[account] += amount
	return nil
}
