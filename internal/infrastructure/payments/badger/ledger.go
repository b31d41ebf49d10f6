package badgerledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/nc80sp/marketd/internal/infrastructure/payments"
	"github.com/timshannon/badgerhold/v4"
)

const ledgerStoreDir = "payments"

type accountDTO struct {
	Id      string
	Balance uint64
}

type valueLedger struct {
	lock  *sync.Mutex
	store *badgerhold.Store
}

func NewValueLedger(baseDir string, logger badger.Logger) (payments.Ledger, error) {
	var dir string
	if baseDir != "" {
		dir = filepath.Join(baseDir, ledgerStoreDir)
	}

	isInMemory := dir == ""
	opts := badger.DefaultOptions(dir)
	opts.Logger = logger
	if isInMemory {
		opts.InMemory = true
	}

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open payments store: %w", err)
	}

	return &valueLedger{
		lock:  &sync.Mutex{},
		store: store,
	}, nil
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

	source, err := l.getAccount(from)
	if err != nil {
		return err
	}
	if source.Balance < amount {
		return fmt.Errorf(
			"insufficient balance for %s: have %d, need %d", from, source.Balance, amount,
		)
	}
	if from == to {
		return nil
	}
	dest, err := l.getAccount(to)
	if err != nil {
		return err
	}

	source.Balance -= amount
	dest.Balance += amount
	if err := l.store.Upsert(from, source); err != nil {
		return fmt.Errorf("failed to update source account: %w", err)
	}
	if err := l.store.Upsert(to, dest); err != nil {
		return fmt.Errorf("failed to update destination account: %w", err)
	}
	return nil
}

func (l *valueLedger) BalanceOf(_ context.Context, account string) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	record, err := l.getAccount(account)
	if err != nil {
		return 0, err
	}
	return record.Balance, nil
}

func (l *valueLedger) Deposit(_ context.Context, account string, amount uint64) error {
	if account == "" {
		return fmt.Errorf("missing account")
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	record, err := l.getAccount(account)
	if err != nil {
		return err
	}
	if record.Balance > math.MaxUint64-amount {
		return fmt.Errorf("balance overflow for %s", account)
	}
	record.Balance += amount
	if err := l.store.Upsert(account, record); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (l *valueLedger) Close() {
	// nolint:all
	l.store.Close()
}

func (l *valueLedger) getAccount(id string) (accountDTO, error) {
	var record accountDTO
	err := l.store.Get(id, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return accountDTO{Id: id}, nil
	}
	if err != nil {
		return accountDTO{}, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return record, nil
}
