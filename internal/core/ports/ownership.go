package ports

import (
	"context"

	"github.com/nc80sp/marketd/internal/core/domain"
)

// OwnershipRegistry is the system of record for who owns each asset and who
// is authorized to transfer it. The listing ledger never mutates it except
// through Transfer during a successful purchase.
type OwnershipRegistry interface {
	OwnerOf(ctx context.Context, asset domain.AssetRef) (string, error)
	// IsAuthorized reports whether the operator holds transfer authorization
	// over the asset, either a per-asset approval or an operator-for-all
	// grant from the current owner.
	IsAuthorized(ctx context.Context, asset domain.AssetRef, operator string) (bool, error)
	// Transfer moves ownership from `from` to `to`. It fails if `from` is not
	// the current owner or if the registry's caller lacks authorization, and
	// clears any per-asset approval on success.
	Transfer(ctx context.Context, asset domain.AssetRef, from, to string) error
}
