package bank

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

func TestTransfer(t *testing.T) {
	b := NewInMemory()
	alice := uuid.New()
	bob := uuid.New()

	b.Mint(alice, 1000)
	require.NoError(t, b.Transfer(400, alice, bob))
	assert.Equal(t, uint64(600), b.Balance(alice))
	assert.Equal(t, uint64(400), b.Balance(bob))
}

func TestTransferInsufficientFunds(t *testing.T) {
	b := NewInMemory()
	alice := uuid.New()
	bob := uuid.New()
	b.Mint(alice, 100)

	err := b.Transfer(101, alice, bob)
	assert.ErrorIs(t, err, ledger.ErrTransferFailed)
	assert.Equal(t, uint64(100), b.Balance(alice), "failed transfer must not mutate")
	assert.Zero(t, b.Balance(bob))
}

func TestZeroTransfer(t *testing.T) {
	b := NewInMemory()
	assert.NoError(t, b.Transfer(0, uuid.New(), uuid.New()))
}
