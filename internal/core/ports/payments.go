package ports

import "context"

// ValueLedger is the atomic payment primitive the listing ledger settles
// against. Amounts are denominated in the smallest indivisible unit of the
// payment currency.
type ValueLedger interface {
	// Transfer moves amount from one account to the other, failing without
	// partial effect if the source balance is insufficient or the destination
	// refuses funds. A transfer refunding an immediately preceding transfer
	// must always succeed.
	Transfer(ctx context.Context, from, to string, amount uint64) error
	BalanceOf(ctx context.Context, account string) (uint64, error)
	Deposit(ctx context.Context, account string, amount uint64) error
}
