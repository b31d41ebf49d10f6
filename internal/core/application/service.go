package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/internal/core/ports"
	"github.com/nc80sp/marketd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const eventsChBufferSize = 128

type service struct {
	// services
	repoManager ports.RepoManager
	registry    ports.OwnershipRegistry
	valueLedger ports.ValueLedger

	// config
	operator string

	// lock serializing mutations of the listing ledger. External calls
	// during a purchase run outside the critical section, after the listing
	// has been cleared, so collaborator callbacks re-entering the ledger
	// observe the asset as unlisted.
	lock sync.Mutex

	eventsCh  chan domain.MarketEvent
	closeOnce sync.Once
}

func NewService(
	repoManager ports.RepoManager,
	registry ports.OwnershipRegistry,
	valueLedger ports.ValueLedger,
	operator string,
) (Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if registry == nil {
		return nil, fmt.Errorf("missing ownership registry")
	}
	if valueLedger == nil {
		return nil, fmt.Errorf("missing value ledger")
	}
	if operator == "" {
		return nil, fmt.Errorf("missing market operator identity")
	}

	return &service{
		repoManager: repoManager,
		registry:    registry,
		valueLedger: valueLedger,
		operator:    operator,
		eventsCh:    make(chan domain.MarketEvent, eventsChBufferSize),
	}, nil
}

func (s *service) Stop() {
	s.closeOnce.Do(func() {
		close(s.eventsCh)
	})
	log.Debug("market service stopped")
}

func (s *service) ListItem(
	ctx context.Context, asset domain.AssetRef, price uint64, caller string,
) errors.Error {
	if price == 0 {
		return errors.INVALID_PRICE.New("price must be greater than zero").
			WithMetadata(errors.PriceMetadata{Asset: asset.String(), Price: price})
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	owner, err := s.registry.OwnerOf(ctx, asset)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"asset":     asset.String(),
			"operation": "owner_of",
		})
	}
	if owner != caller {
		return errors.NOT_OWNER.New("caller does not own the asset").
			WithMetadata(errors.OwnerMetadata{
				Asset: asset.String(), Caller: caller, Owner: owner,
			})
	}

	authorized, err := s.registry.IsAuthorized(ctx, asset, s.operator)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"asset":     asset.String(),
			"operation": "is_authorized",
		})
	}
	if !authorized {
		return errors.NOT_APPROVED.New("market operator not approved to transfer the asset").
			WithMetadata(errors.ApprovalMetadata{Asset: asset.String(), Operator: s.operator})
	}

	existing, err := s.repoManager.Listings().GetListing(ctx, asset)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"asset":     asset.String(),
			"operation": "get_listing",
		})
	}
	if existing != nil {
		return errors.ALREADY_LISTED.New("asset already has an active listing").
			WithMetadata(errors.ListingMetadata{
				Asset: asset.String(), Seller: existing.Seller, Price: existing.Price,
			})
	}

	listing := domain.Listing{
		Asset:     asset,
		Seller:    caller,
		Price:     price,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.repoManager.Listings().AddListing(ctx, listing); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"asset":     asset.String(),
			"operation": "add_listing",
		})
	}

	log.WithFields(log.Fields{
		"asset":  asset.String(),
		"seller": caller,
		"price":  price,
	}).Debug("created listing")

	s.publishEvent(ctx, domain.NewListingCreatedEvent(listing))
	return nil
}

func (s *service) BuyItem(
	ctx context.Context, asset domain.AssetRef, offered uint64, caller string,
) errors.Error {
	s.lock.Lock()

	listing, err := s.repoManager.Listings().GetListing(ctx, asset)
	if err != nil {
		s.lock.Unlock()
		return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"asset":     asset.String(),
			"operation": "get_listing",
		})
	}
	if listing == nil {
		s.lock.Unlock()
		return errors.NOT_LISTED.New("no active listing for asset").
			WithMetadata(errors.AssetMetadata{Asset: asset.String()})
	}
	if offered < listing.Price {
		s.lock.Unlock()
		return errors.INSUFFICIENT_PAYMENT.New("offered value below listed price").
			WithMetadata(errors.PaymentMetadata{
				Asset: asset.String(), Offered: offered, Price: listing.Price,
			})
	}

	// Commit own state before any external interaction: clearing the listing
	// first closes the reentrancy window on this asset.
	deleted, err := s.repoManager.Listings().DeleteListing(ctx, asset)
	if err != nil {
		s.lock.Unlock()
		return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"asset":     asset.String(),
			"operation": "delete_listing",
		})
	}
	s.lock.Unlock()

	// The full offered amount is forwarded to the seller, no change is
	// returned on overpayment.
	if err := s.valueLedger.Transfer(ctx, caller, deleted.Seller, offered); err != nil {
		s.restoreListing(ctx, *deleted)
		return errors.EXTERNAL_TRANSFER_FAILED.Wrap(err).
			WithMetadata(errors.TransferMetadata{
				Asset: asset.String(), From: caller, To: deleted.Seller, Stage: "payment",
			})
	}

	if err := s.registry.Transfer(ctx, asset, deleted.Seller, caller); err != nil {
		// Refund of an immediately preceding transfer cannot fail per the
		// ValueLedger contract.
		if refundErr := s.valueLedger.Transfer(
			ctx, deleted.Seller, caller, offered,
		); refundErr != nil {
			log.WithError(refundErr).WithField("asset", asset.String()).
				Error("failed to refund payment after aborted ownership transfer")
		}
		s.restoreListing(ctx, *deleted)
		return errors.EXTERNAL_TRANSFER_FAILED.Wrap(err).
			WithMetadata(errors.TransferMetadata{
				Asset: asset.String(), From: deleted.Seller, To: caller, Stage: "ownership",
			})
	}

	log.WithFields(log.Fields{
		"asset":   asset.String(),
		"seller":  deleted.Seller,
		"buyer":   caller,
		"price":   deleted.Price,
		"offered": offered,
	}).Debug("completed purchase")

	s.publishEvent(ctx, domain.NewListingPurchasedEvent(*deleted, caller))
	return nil
}

func (s *service) CancelListing(
	ctx context.Context, asset domain.AssetRef, caller string,
) errors.Error {
	s.lock.Lock()
	defer s.lock.Unlock()

	listing, err := s.repoManager.Listings().GetListing(ctx, asset)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"asset":     asset.String(),
			"operation": "get_listing",
		})
	}
	if listing == nil {
		return errors.NOT_LISTED.New("no active listing for asset").
			WithMetadata(errors.AssetMetadata{Asset: asset.String()})
	}
	if listing.Seller != caller {
		return errors.NOT_SELLER.New("caller is not the listing seller").
			WithMetadata(errors.SellerMetadata{
				Asset: asset.String(), Caller: caller, Seller: listing.Seller,
			})
	}

	if _, err := s.repoManager.Listings().DeleteListing(ctx, asset); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"asset":     asset.String(),
			"operation": "delete_listing",
		})
	}

	log.WithFields(log.Fields{
		"asset":  asset.String(),
		"seller": caller,
	}).Debug("canceled listing")

	s.publishEvent(ctx, domain.NewListingCanceledEvent(*listing))
	return nil
}

func (s *service) GetListing(
	ctx context.Context, asset domain.AssetRef,
) (*domain.Listing, error) {
	listing, err := s.repoManager.Listings().GetListing(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		// Not listed reads as a zero-valued record, never as an error.
		return &domain.Listing{Asset: asset}, nil
	}
	return listing, nil
}

func (s *service) GetAllListings(ctx context.Context) ([]domain.Listing, error) {
	return s.repoManager.Listings().GetAllListings(ctx)
}

func (s *service) GetListingsBySeller(
	ctx context.Context, seller string,
) ([]domain.Listing, error) {
	return s.repoManager.Listings().GetListingsBySeller(ctx, seller)
}

func (s *service) GetEventHistory(
	ctx context.Context, asset domain.AssetRef,
) ([]domain.MarketEvent, error) {
	return s.repoManager.MarketEvents().GetEventsByAsset(ctx, asset)
}

func (s *service) GetEventsChannel(ctx context.Context) <-chan domain.MarketEvent {
	return s.eventsCh
}

func (s *service) GetInfo(ctx context.Context) (*MarketInfo, error) {
	listings, err := s.repoManager.Listings().GetAllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}
	events, err := s.repoManager.MarketEvents().GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get market events: %w", err)
	}

	info := &MarketInfo{
		Operator:     s.operator,
		OpenListings: len(listings),
	}
	for _, event := range events {
		if event.Type == domain.EventTypeListingPurchased {
			info.TotalSales++
			info.TotalVolume += event.Price
		}
	}
	return info, nil
}

// restoreListing undoes the tentative clear of a listing after a failed
// exchange. The slot may have been taken again in the meantime by the owner
// re-listing, in that case the newer listing wins.
func (s *service) restoreListing(ctx context.Context, listing domain.Listing) {
	s.lock.Lock()
	defer s.lock.Unlock()

	existing, err := s.repoManager.Listings().GetListing(ctx, listing.Asset)
	if err != nil {
		log.WithError(err).WithField("asset", listing.Asset.String()).
			Error("failed to check listing slot before restore")
		return
	}
	if existing != nil {
		log.WithField("asset", listing.Asset.String()).
			Warn("skipping listing restore, slot taken by a newer listing")
		return
	}
	if err := s.repoManager.Listings().AddListing(ctx, listing); err != nil {
		log.WithError(err).WithField("asset", listing.Asset.String()).
			Error("failed to restore listing after aborted exchange")
	}
}

func (s *service) publishEvent(ctx context.Context, event domain.MarketEvent) {
	if err := s.repoManager.MarketEvents().Append(ctx, []domain.MarketEvent{event}); err != nil {
		log.WithError(err).WithField("event", event.Id).Error("failed to persist market event")
	}

	select {
	case s.eventsCh <- event:
	default:
		log.WithField("event", event.Id).Warn("events channel full, dropping event")
	}
}
