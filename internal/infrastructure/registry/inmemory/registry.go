package inmemoryregistry

import (
	"context"
	"fmt"
	"sync"

	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/internal/infrastructure/registry"
)

type assetRecord struct {
	owner    string
	approved string
}

type ownershipRegistry struct {
	lock     *sync.RWMutex
	operator string
	assets   map[string]*assetRecord
	// operator-for-all grants, keyed by owner then operator
	operators map[string]map[string]bool
	serials   map[string]uint64
}

func NewOwnershipRegistry(operator string) registry.Registry {
	return &ownershipRegistry{
		lock:      &sync.RWMutex{},
		operator:  operator,
		assets:    make(map[string]*assetRecord),
		operators: make(map[string]map[string]bool),
		serials:   make(map[string]uint64),
	}
}

func (r *ownershipRegistry) OwnerOf(
	_ context.Context, asset domain.AssetRef,
) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	record, ok := r.assets[asset.String()]
	if !ok {
		return "", fmt.Errorf("unknown asset %s", asset)
	}
	return record.owner, nil
}

func (r *ownershipRegistry) IsAuthorized(
	_ context.Context, asset domain.AssetRef, operator string,
) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	record, ok := r.assets[asset.String()]
	if !ok {
		return false, fmt.Errorf("unknown asset %s", asset)
	}
	return r.isAuthorized(record, operator), nil
}

func (r *ownershipRegistry) Transfer(
	_ context.Context, asset domain.AssetRef, from, to string,
) error {
	if to == "" {
		return fmt.Errorf("missing transfer destination")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	record, ok := r.assets[asset.String()]
	if !ok {
		return fmt.Errorf("unknown asset %s", asset)
	}
	if record.owner != from {
		return fmt.Errorf("%s is not the owner of %s", from, asset)
	}
	if !r.isAuthorized(record, r.operator) {
		return fmt.Errorf("operator %s not authorized to transfer %s", r.operator, asset)
	}

	// per-asset approval is consumed by the transfer
	record.owner = to
	record.approved = ""
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

	asset := domain.AssetRef{Collection: collection, Serial: r.serials[collection]}
	r.serials[collection]++
	r.assets[asset.String()] = &assetRecord{owner: owner}
	return asset, nil
}

func (r *ownershipRegistry) Approve(
	_ context.Context, asset domain.AssetRef, caller, operator string,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	record, ok := r.assets[asset.String()]
	if !ok {
		return fmt.Errorf("unknown asset %s", asset)
	}
	if record.owner != caller && !r.operators[record.owner][caller] {
		return fmt.Errorf("%s cannot approve transfers of %s", caller, asset)
	}

	record.approved = operator
	return nil
}

func (r *ownershipRegistry) SetApprovalForAll(
	_ context.Context, owner, operator string, approved bool,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.operators[owner] == nil {
		r.operators[owner] = make(map[string]bool)
	}
	r.operators[owner][operator] = approved
	return nil
}

func (r *ownershipRegistry) Close() {}

func (r *ownershipRegistry) isAuthorized(record *assetRecord, operator string) bool {
	if operator == record.owner {
		return true
	}
	return record.approved == operator || r.operators[record.owner][operator]
}
