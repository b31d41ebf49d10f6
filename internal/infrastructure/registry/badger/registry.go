package badgerregistry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/internal/infrastructure/registry"
	"github.com/timshannon/badgerhold/v4"
)

const registryStoreDir = "registry"

type assetDTO struct {
	Collection string
	Serial     uint64
	Owner      string
	Approved   string
}

type operatorGrantDTO struct {
	Owner    string
	Operator string
	Approved bool
}

type serialCounterDTO struct {
	Next uint64
}

type ownershipRegistry struct {
	lock     *sync.Mutex
	operator string
	store    *badgerhold.Store
}

func NewOwnershipRegistry(
	operator, baseDir string, logger badger.Logger,
) (registry.Registry, error) {
	if operator == "" {
		return nil, fmt.Errorf("missing market operator identity")
	}

	var dir string
	if baseDir != "" {
		dir = filepath.Join(baseDir, registryStoreDir)
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
		return nil, fmt.Errorf("failed to open registry store: %w", err)
	}

	return &ownershipRegistry{
		lock:     &sync.Mutex{},
		operator: operator,
		store:    store,
	}, nil
}

func (r *ownershipRegistry) OwnerOf(
	_ context.Context, asset domain.AssetRef,
) (string, error) {
	record, err := r.getAsset(asset)
	if err != nil {
		return "", err
	}
	return record.Owner, nil
}

func (r *ownershipRegistry) IsAuthorized(
	_ context.Context, asset domain.AssetRef, operator string,
) (bool, error) {
	record, err := r.getAsset(asset)
	if err != nil {
		return false, err
	}
	return r.isAuthorized(record, operator)
}

func (r *ownershipRegistry) Transfer(
	_ context.Context, asset domain.AssetRef, from, to string,
) error {
	if to == "" {
		return fmt.Errorf("missing transfer destination")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	record, err := r.getAsset(asset)
	if err != nil {
		return err
	}
	if record.Owner != from {
		return fmt.Errorf("%s is not the owner of %s", from, asset)
	}
	authorized, err := r.isAuthorized(record, r.operator)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("operator %s not authorized to transfer %s", r.operator, asset)
	}

	// per-asset approval is consumed by the transfer
	record.Owner = to
	record.Approved = ""
	if err := r.store.Update(asset.String(), record); err != nil {
		return fmt.Errorf("failed to update asset record: %w", err)
	}
	return nil
}

func (r *ownershipRegistry) Mint(
	_ context.Context, collection, owner string,
) (domain.AssetRef, error) {
	if collection == "" || owner == "" {
		return domain.AssetRef{}, fmt.Errorf("missing collection or owner")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	var counter serialCounterDTO
	err := r.store.Get(collection, &counter)
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return domain.AssetRef{}, fmt.Errorf("failed to get serial counter: %w", err)
	}

	asset := domain.AssetRef{Collection: collection, Serial: counter.Next}
	counter.Next++
	if err := r.store.Upsert(collection, counter); err != nil {
		return domain.AssetRef{}, fmt.Errorf("failed to bump serial counter: %w", err)
	}

	record := assetDTO{
		Collection: asset.Collection,
		Serial:     asset.Serial,
		Owner:      owner,
	}
	if err := r.store.Insert(asset.String(), record); err != nil {
		return domain.AssetRef{}, fmt.Errorf("failed to insert asset record: %w", err)
	}
	return asset, nil
}

func (r *ownershipRegistry) Approve(
	_ context.Context, asset domain.AssetRef, caller, operator string,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	record, err := r.getAsset(asset)
	if err != nil {
		return err
	}
	if record.Owner != caller {
		granted, err := r.hasOperatorGrant(record.Owner, caller)
		if err != nil {
			return err
		}
		if !granted {
			return fmt.Errorf("%s cannot approve transfers of %s", caller, asset)
		}
	}

	record.Approved = operator
	if err := r.store.Update(asset.String(), record); err != nil {
		return fmt.Errorf("failed to update asset record: %w", err)
	}
	return nil
}

func (r *ownershipRegistry) SetApprovalForAll(
	_ context.Context, owner, operator string, approved bool,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	grant := operatorGrantDTO{Owner: owner, Operator: operator, Approved: approved}
	if err := r.store.Upsert(grantKey(owner, operator), grant); err != nil {
		return fmt.Errorf("failed to upsert operator grant: %w", err)
	}
	return nil
}

func (r *ownershipRegistry) Close() {
	// nolint:all
	r.store.Close()
}

func (r *ownershipRegistry) getAsset(asset domain.AssetRef) (*assetDTO, error) {
	var record assetDTO
	err := r.store.Get(asset.String(), &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("unknown asset %s", asset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset record: %w", err)
	}
	return &record, nil
}

func (r *ownershipRegistry) isAuthorized(record *assetDTO, operator string) (bool, error) {
	if operator == record.Owner || record.Approved == operator {
		return true, nil
	}
	return r.hasOperatorGrant(record.Owner, operator)
}

func (r *ownershipRegistry) hasOperatorGrant(owner, operator string) (bool, error) {
	var grant operatorGrantDTO
	err := r.store.Get(grantKey(owner, operator), &grant)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get operator grant: %w", err)
	}
	return grant.Approved, nil
}

func grantKey(owner, operator string) string {
	return fmt.Sprintf("%s/%s", owner, operator)
}
