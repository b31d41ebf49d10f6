package payments

import "github.com/nc80sp/marketd/internal/core/ports"

// Ledger is the value-transfer capability the adapters implement: the
// ValueLedger port plus the lifecycle hook the persistent backends need.
type Ledger interface {
	ports.ValueLedger
	Close()
}
