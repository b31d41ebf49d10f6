package pgdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nc80sp/marketd/internal/core/domain"
)

type marketEventRepository struct {
	db *sql.DB
}

func NewMarketEventRepository(config ...interface{}) (domain.MarketEventRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config: expected 1 argument, got %d", len(config))
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf(
			"cannot open market event repository: expected *sql.DB but got %T", config[0],
		)
	}

	return &marketEventRepository{db}, nil
}

func (r *marketEventRepository) Append(
	ctx context.Context, events []domain.MarketEvent,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	// nolint:all
	defer tx.Rollback()

	for _, event := range events {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO market_event
			   (id, type, asset, collection, serial, seller, buyer, price, event_time)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO NOTHING`,
			event.Id, string(event.Type), event.Asset.String(),
			event.Asset.Collection, int64(event.Asset.Serial),
			event.Seller, event.Buyer, int64(event.Price), event.Timestamp,
		); err != nil {
			return fmt.Errorf("failed to append market event: %w", err)
		}
	}

	return tx.Commit()
}

func (r *marketEventRepository) GetEventsByAsset(
	ctx context.Context, asset domain.AssetRef,
) ([]domain.MarketEvent, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, type, collection, serial, seller, buyer, price, event_time
		 FROM market_event WHERE asset = $1 ORDER BY seq`,
		asset.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get events by asset: %w", err)
	}
	// nolint:all
	defer rows.Close()

	return scanEvents(rows)
}

func (r *marketEventRepository) GetAllEvents(
	ctx context.Context,
) ([]domain.MarketEvent, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, type, collection, serial, seller, buyer, price, event_time
		 FROM market_event ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	// nolint:all
	defer rows.Close()

	return scanEvents(rows)
}

func (r *marketEventRepository) Close() {
	// nolint:all
	r.db.Close()
}

func scanEvents(rows *sql.Rows) ([]domain.MarketEvent, error) {
	events := make([]domain.MarketEvent, 0)
	for rows.Next() {
		var id, eventType, collection, seller, buyer string
		var serial, price, timestamp int64
		if err := rows.Scan(
			&id, &eventType, &collection, &serial, &seller, &buyer, &price, &timestamp,
		); err != nil {
			return nil, err
		}
		events = append(events, domain.MarketEvent{
			Id:        id,
			Type:      domain.EventType(eventType),
			Asset:     domain.AssetRef{Collection: collection, Serial: uint64(serial)},
			Seller:    seller,
			Buyer:     buyer,
			Price:     uint64(price),
			Timestamp: timestamp,
		})
	}
	return events, rows.Err()
}
