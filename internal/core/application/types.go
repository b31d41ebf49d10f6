package application

import (
	"context"

	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/pkg/errors"
)

type Service interface {
	ListItem(
		ctx context.Context, asset domain.AssetRef, price uint64, caller string,
	) errors.Error
	BuyItem(
		ctx context.Context, asset domain.AssetRef, offered uint64, caller string,
	) errors.Error
	CancelListing(ctx context.Context, asset domain.AssetRef, caller string) errors.Error
	GetListing(ctx context.Context, asset domain.AssetRef) (*domain.Listing, error)
	GetAllListings(ctx context.Context) ([]domain.Listing, error)
	GetListingsBySeller(ctx context.Context, seller string) ([]domain.Listing, error)
	GetEventHistory(ctx context.Context, asset domain.AssetRef) ([]domain.MarketEvent, error)
	GetEventsChannel(ctx context.Context) <-chan domain.MarketEvent
	GetInfo(ctx context.Context) (*MarketInfo, error)
	Stop()
}

type MarketInfo struct {
	Operator     string
	OpenListings int
	TotalSales   int
	TotalVolume  uint64
}
