package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	marketEventStoreDir    = "market-events"
	marketEventSeqKey      = "market_event_seq"
	marketEventSeqBandwidth = 64
)

type marketEventRepository struct {
	store *badgerhold.Store
	seq   *badger.Sequence
}

type marketEventDTO struct {
	domain.MarketEvent
	AssetKey string
	// Seq is the insertion counter history queries sort by. Timestamps have
	// second granularity, so they cannot order events within one second.
	Seq uint64
}

func NewMarketEventRepository(config ...interface{}) (domain.MarketEventRepository, error) {
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
		dir = filepath.Join(baseDir, marketEventStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open market event store: %s", err)
	}

	seq, err := store.Badger().GetSequence([]byte(marketEventSeqKey), marketEventSeqBandwidth)
	if err != nil {
		// nolint:all
		store.Close()
		return nil, fmt.Errorf("failed to open market event sequence: %s", err)
	}

	return &marketEventRepository{store, seq}, nil
}

func (r *marketEventRepository) Append(
	ctx context.Context, events []domain.MarketEvent,
) error {
	for _, event := range events {
		seq, err := r.seq.Next()
		if err != nil {
			return fmt.Errorf("failed to advance market event sequence: %s", err)
		}
		dto := marketEventDTO{MarketEvent: event, AssetKey: event.Asset.String(), Seq: seq}
		insertFn := func() error {
			return r.store.Insert(event.Id, dto)
		}
		if err := insertFn(); err != nil {
			if errors.Is(err, badgerhold.ErrKeyExists) {
				continue
			}
			if errors.Is(err, badger.ErrConflict) {
				attempts := 1
				for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
					time.Sleep(100 * time.Millisecond)
					err = insertFn()
					attempts++
				}
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *marketEventRepository) GetEventsByAsset(
	ctx context.Context, asset domain.AssetRef,
) ([]domain.MarketEvent, error) {
	query := badgerhold.Where("AssetKey").Eq(asset.String())
	var dtos []marketEventDTO
	if err := r.store.Find(&dtos, query); err != nil {
		return nil, fmt.Errorf("failed to get events by asset: %w", err)
	}
	return toEvents(dtos), nil
}

func (r *marketEventRepository) GetAllEvents(
	ctx context.Context,
) ([]domain.MarketEvent, error) {
	var dtos []marketEventDTO
	if err := r.store.Find(&dtos, nil); err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return toEvents(dtos), nil
}

func (r *marketEventRepository) Close() {
	// nolint:all
	r.seq.Release()
	// nolint:all
	r.store.Close()
}

func toEvents(dtos []marketEventDTO) []domain.MarketEvent {
	sort.Slice(dtos, func(i, j int) bool {
		return dtos[i].Seq < dtos[j].Seq
	})
	events := make([]domain.MarketEvent, 0, len(dtos))
	for _, dto := range dtos {
		events = append(events, dto.MarketEvent)
	}
	return events
}
