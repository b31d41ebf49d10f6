package registry

import (
	"context"

	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/internal/core/ports"
)

// Registry extends the ownership registry port with the provisioning surface
// the adapters expose to operators: minting new asset identities and granting
// transfer approvals. The listing ledger itself only ever sees the port.
type Registry interface {
	ports.OwnershipRegistry
	// Mint creates a new asset in the collection with an auto-incremented
	// serial and assigns it to the owner.
	Mint(ctx context.Context, collection, owner string) (domain.AssetRef, error)
	// Approve grants the operator a per-asset transfer approval. The caller
	// must be the asset owner or one of its operators-for-all.
	Approve(ctx context.Context, asset domain.AssetRef, caller, operator string) error
	SetApprovalForAll(ctx context.Context, owner, operator string, approved bool) error
	Close()
}
