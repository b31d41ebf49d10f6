package domain

import "context"

type MarketEventRepository interface {
	Append(ctx context.Context, events []MarketEvent) error
	GetEventsByAsset(ctx context.Context, asset AssetRef) ([]MarketEvent, error)
	GetAllEvents(ctx context.Context) ([]MarketEvent, error)
	Close()
}
