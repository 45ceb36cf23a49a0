package bank

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Bank is the host's value-transfer primitive. It moves native value between
// accounts, including the platform's custodial escrow account, and is the
// only fallible side effect of any ledger operation: services call it before
// writing state so a failed transfer aborts the operation untouched.
type Bank interface {
	Transfer(amount uint64, from, to uuid.UUID) error
}

// InMemory is a process-local Bank used by tests and the standalone server.
// The real deployment substitutes the chain's native transfer here.
type InMemory struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]uint64
}

// NewInMemory returns an empty in-memory bank.
func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[uuid.UUID]uint64)}
}

// Mint credits an account out of thin air. Test and bootstrap helper.
func (b *InMemory) Mint(account uuid.UUID, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[account] += amount
}

// Balance returns an account's native value balance.
func (b *InMemory) Balance(account uuid.UUID) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[account]
}

// Transfer moves amount from one account to another, failing without
// mutation when the source balance is too small.
func (b *InMemory) Transfer(amount uint64, from, to uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.accounts[from] < amount {
		return fmt.Errorf("account %s holds %d, need %d: %w",
			from, b.accounts[from], amount, ledger.ErrTransferFailed)
	}
	b.accounts[from] -= amount
	b.accounts[to] += amount
	return nil
}
