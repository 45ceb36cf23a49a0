package exchange

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/bank"
	"carbon-market/credit-exchange/exchange-backend/internal/chain"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
	"carbon-market/credit-exchange/exchange-backend/internal/projects"
)

type world struct {
	ex        *Exchange
	bank      *bank.InMemory
	clock     *chain.Manual
	owner     uuid.UUID
	escrow    uuid.UUID
	developer uuid.UUID
	verifier  uuid.UUID
	buyer     uuid.UUID
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		bank:      bank.NewInMemory(),
		clock:     chain.NewManual(1),
		owner:     uuid.New(),
		escrow:    uuid.New(),
		developer: uuid.New(),
		verifier:  uuid.New(),
		buyer:     uuid.New(),
	}
	w.ex = New(Options{
		State:            ledger.NewState(),
		Bank:             w.bank,
		Clock:            w.clock,
		Owner:            w.owner,
		Escrow:           w.escrow,
		MinVerifierStake: 1_000_000,
		MinProjectStake:  5_000_000,
		FeeBasisPoints:   25,
		RetirementFee:    10,
		Logger:           zap.NewNop(),
	})

	w.bank.Mint(w.developer, 5_000_000)
	w.bank.Mint(w.verifier, 1_000_000)
	w.bank.Mint(w.buyer, 10_000)
	return w
}

// registeredVerifiedProject walks a project through registration,
// verification and a 1000-credit issuance at price 10.
func (w *world) registeredVerifiedProject(t *testing.T) uint64 {
	t.Helper()

	id, err := w.ex.Projects.Register(w.developer, projects.RegisterRequest{
		Name:        "Rio Verde Reforestation",
		Location:    "Brazil",
		Methodology: "AR-ACM0003",
		Type:        ledger.ProjectTypeForest,
		Standard:    ledger.StandardVCS,
		VintageYear: 2023,
		Stake:       5_000_000,
	})
	require.NoError(t, err)

	_, err = w.ex.Verifiers.Register(w.verifier, "Global Audit Co", ledger.StandardVCS, 1_000_000)
	require.NoError(t, err)
	require.NoError(t, w.ex.Projects.Verify(w.verifier, id))
	require.NoError(t, w.ex.Projects.Issue(w.developer, id, 1000, 10))
	return id
}

func (w *world) conserved(t *testing.T, projectID uint64) {
	t.Helper()
	w.ex.State.Lock()
	defer w.ex.State.Unlock()
	require.NoError(t, w.ex.State.CheckConservation(projectID))
}

func TestFullMarketLifecycle(t *testing.T) {
	w := newWorld(t)
	projectID := w.registeredVerifiedProject(t)
	w.conserved(t, projectID)

	// Developer lists 400 credits at price 12 for 100 heights.
	orderID, err := w.ex.Market.CreateSellOrder(w.developer, projectID, 400, 12, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), w.ex.Projects.Balance(w.developer, projectID))
	w.conserved(t, projectID)

	// A buyer takes 150 of them.
	result, err := w.ex.Market.Buy(w.buyer, orderID, 150)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), result.Filled)
	assert.Equal(t, uint64(150), w.ex.Projects.Balance(w.buyer, projectID))

	fee := uint64(150 * 12 * 25 / 10000)
	assert.Equal(t, fee, result.Fee)
	assert.Equal(t, uint64(150*12)-fee, w.bank.Balance(w.developer), "seller paid net of fee")

	order, ok := w.ex.Market.Get(orderID)
	require.True(t, ok)
	assert.Equal(t, uint64(150), order.Filled)
	assert.True(t, order.Active)

	stats := w.ex.Platform.Stats()
	assert.Equal(t, fee, stats.FeeBalance)
	w.conserved(t, projectID)

	// The buyer retires 50 credits.
	record, err := w.ex.Retirement.Retire(w.buyer, projectID, 50, "2025 offset claim")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), w.ex.Projects.Balance(w.buyer, projectID))

	project, ok := w.ex.Projects.Get(projectID)
	require.True(t, ok)
	assert.Equal(t, uint64(50), project.Retired)
	assert.Equal(t, uint64(950), project.Available())
	w.conserved(t, projectID)

	offset, ok := w.ex.Retirement.CO2Offset(record.ID)
	require.True(t, ok)
	assert.Equal(t, uint64(50), offset)

	stats = w.ex.Platform.Stats()
	assert.Equal(t, uint64(1000), stats.TotalIssued)
	assert.Equal(t, uint64(50), stats.TotalRetired)
	assert.Equal(t, fee+10, stats.FeeBalance, "trade fee plus retirement fee")
	assert.Equal(t, uint64(3), stats.Transactions, "issuance, purchase, retirement")

	// Owner withdraws the accumulated fees.
	require.NoError(t, w.ex.Platform.WithdrawFees(w.owner, fee+10))
	assert.Equal(t, fee+10, w.bank.Balance(w.owner))
	assert.Zero(t, w.ex.Platform.Stats().FeeBalance)
}

func TestAuditTrailAcrossLifecycle(t *testing.T) {
	w := newWorld(t)
	projectID := w.registeredVerifiedProject(t)

	orderID, err := w.ex.Market.CreateSellOrder(w.developer, projectID, 400, 12, 100)
	require.NoError(t, err)
	_, err = w.ex.Market.Buy(w.buyer, orderID, 150)
	require.NoError(t, err)
	_, err = w.ex.Retirement.Retire(w.buyer, projectID, 50, "claim")
	require.NoError(t, err)

	txs := w.ex.Audit.ListTransactions()
	require.Len(t, txs, 3)
	assert.Equal(t, ledger.TxIssuance, txs[0].Type)
	assert.Equal(t, ledger.TxPurchase, txs[1].Type)
	assert.Equal(t, ledger.TxRetirement, txs[2].Type)
	assert.Equal(t, uint64(12), txs[1].Price)
	assert.Zero(t, txs[0].Price)
	assert.Zero(t, txs[2].Price)

	tx, ok := w.ex.Audit.GetTransaction(2)
	require.True(t, ok)
	assert.Equal(t, w.buyer, tx.Buyer)
	assert.Equal(t, w.developer, tx.Seller)
}

func TestTradingPauseBlocksNewOrders(t *testing.T) {
	w := newWorld(t)
	projectID := w.registeredVerifiedProject(t)

	enabled, err := w.ex.Platform.ToggleTrading(w.owner)
	require.NoError(t, err)
	require.False(t, enabled)

	_, err = w.ex.Market.CreateSellOrder(w.developer, projectID, 100, 12, 100)
	assert.ErrorIs(t, err, ledger.ErrTradingPaused)

	enabled, err = w.ex.Platform.ToggleTrading(w.owner)
	require.NoError(t, err)
	require.True(t, enabled)

	_, err = w.ex.Market.CreateSellOrder(w.developer, projectID, 100, 12, 100)
	assert.NoError(t, err)
}

func TestExpiredOrderEscrowReleasedOnlyByCancel(t *testing.T) {
	w := newWorld(t)
	projectID := w.registeredVerifiedProject(t)

	orderID, err := w.ex.Market.CreateSellOrder(w.developer, projectID, 400, 12, 100)
	require.NoError(t, err)

	w.clock.Advance(500)
	_, err = w.ex.Market.Buy(w.buyer, orderID, 10)
	assert.ErrorIs(t, err, ledger.ErrOrderNotFound)
	assert.Equal(t, uint64(600), w.ex.Projects.Balance(w.developer, projectID))
	w.conserved(t, projectID)

	returned, err := w.ex.Market.Cancel(w.developer, orderID)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), returned)
	assert.Equal(t, uint64(1000), w.ex.Projects.Balance(w.developer, projectID))
	w.conserved(t, projectID)
}
