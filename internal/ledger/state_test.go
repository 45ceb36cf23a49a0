package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceDefaultsToZero(t *testing.T) {
	st := NewState()
	assert.Zero(t, st.BalanceOf(uuid.New(), 1))
}

func TestCreditDebit(t *testing.T) {
	st := NewState()
	account := uuid.New()

	st.Credit(account, 1, 500)
	assert.Equal(t, uint64(500), st.BalanceOf(account, 1))

	require.NoError(t, st.Debit(account, 1, 200))
	assert.Equal(t, uint64(300), st.BalanceOf(account, 1))

	err := st.Debit(account, 1, 301)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, uint64(300), st.BalanceOf(account, 1), "failed debit must not mutate")
}

func TestZeroBalancesAreNotStored(t *testing.T) {
	st := NewState()
	account := uuid.New()

	st.Credit(account, 1, 100)
	require.NoError(t, st.Debit(account, 1, 100))
	assert.Empty(t, st.balances)
}

func TestReservations(t *testing.T) {
	st := NewState()

	st.Reserve(7, 1, 400)
	assert.Equal(t, uint64(400), st.Reserved(7))
	assert.Equal(t, uint64(400), st.EscrowedForProject(1))
	assert.Zero(t, st.EscrowedForProject(2))

	require.NoError(t, st.ConsumeReservation(7, 150))
	assert.Equal(t, uint64(250), st.Reserved(7))

	err := st.ConsumeReservation(7, 251)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	assert.Equal(t, uint64(250), st.ReleaseReservation(7))
	assert.Zero(t, st.Reserved(7))
	assert.Zero(t, st.ReleaseReservation(7), "second release returns nothing")
}

func TestIDCountersStartAtOne(t *testing.T) {
	st := NewState()
	assert.Equal(t, uint64(1), st.NextProjectID())
	assert.Equal(t, uint64(2), st.NextProjectID())
	assert.Equal(t, uint64(1), st.NextOrderID())
	assert.Equal(t, uint64(1), st.NextRetirementID())

	tx := st.AppendTransaction(uuid.New(), uuid.New(), 1, 10, 0, 5, TxIssuance)
	assert.Equal(t, uint64(1), tx.ID)
}

func TestFeeBalance(t *testing.T) {
	st := NewState()
	st.AddFees(100)
	require.NoError(t, st.DeductFees(60))
	assert.Equal(t, uint64(40), st.FeeBalance())

	err := st.DeductFees(41)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, uint64(40), st.FeeBalance())
}

func TestCheckConservation(t *testing.T) {
	st := NewState()
	developer := uuid.New()
	buyer := uuid.New()

	st.PutProject(&Project{ID: 1, Developer: developer, TotalIssued: 1000, Retired: 50})
	st.Credit(developer, 1, 550)
	st.Credit(buyer, 1, 100)
	st.Reserve(3, 1, 300)

	require.NoError(t, st.CheckConservation(1))

	// Losing escrowed credits must trip the check.
	st.ReleaseReservation(3)
	assert.Error(t, st.CheckConservation(1))

	assert.ErrorIs(t, st.CheckConservation(99), ErrProjectNotFound)
}

func TestStats(t *testing.T) {
	st := NewState()
	st.AddIssued(1000)
	st.AddRetired(50)
	st.AddFees(25)
	st.NextProjectID()
	st.PutVerifier(&Verifier{Account: uuid.New()})

	stats := st.Stats()
	assert.Equal(t, uint64(1000), stats.TotalIssued)
	assert.Equal(t, uint64(50), stats.TotalRetired)
	assert.Equal(t, uint64(25), stats.FeeBalance)
	assert.True(t, stats.TradingEnabled)
	assert.Equal(t, uint64(1), stats.Projects)
	assert.Equal(t, uint64(1), stats.Verifiers)
}
