package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeListingCreated   EventType = "listing_created"
	EventTypeListingPurchased EventType = "listing_purchased"
	EventTypeListingCanceled  EventType = "listing_canceled"
)

type EventType string

// MarketEvent is the notification emitted after a successful mutation of the
// listing ledger. Events are emitted synchronously and only on success.
type MarketEvent struct {
	Id        string
	Type      EventType
	Asset     AssetRef
	Seller    string
	Buyer     string
	Price     uint64
	Timestamp int64
}

func NewListingCreatedEvent(listing Listing) MarketEvent {
	return MarketEvent{
		Id:        uuid.NewString(),
		Type:      EventTypeListingCreated,
		Asset:     listing.Asset,
		Seller:    listing.Seller,
		Price:     listing.Price,
		Timestamp: time.Now().Unix(),
	}
}

func NewListingPurchasedEvent(listing Listing, buyer string) MarketEvent {
	return MarketEvent{
		Id:        uuid.NewString(),
		Type:      EventTypeListingPurchased,
		Asset:     listing.Asset,
		Seller:    listing.Seller,
		Buyer:     buyer,
		Price:     listing.Price,
		Timestamp: time.Now().Unix(),
	}
}

func NewListingCanceledEvent(listing Listing) MarketEvent {
	return MarketEvent{
		Id:        uuid.NewString(),
		Type:      EventTypeListingCanceled,
		Asset:     listing.Asset,
		Seller:    listing.Seller,
		Timestamp: time.Now().Unix(),
	}
}
