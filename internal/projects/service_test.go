package projects

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/bank"
	"carbon-market/credit-exchange/exchange-backend/internal/chain"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

const minStake = 5_000_000

// MockSink is a mock implementation of the audit.Sink interface
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(tx *ledger.Transaction) {
	m.Called(tx)
}

type fixture struct {
	svc    *Service
	state  *ledger.State
	bank   *bank.InMemory
	clock  *chain.Manual
	sink   *MockSink
	escrow uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		state:  ledger.NewState(),
		bank:   bank.NewInMemory(),
		clock:  chain.NewManual(10),
		sink:   new(MockSink),
		escrow: uuid.New(),
	}
	f.svc = NewService(f.state, f.bank, f.clock,
		Params{MinStake: minStake, Escrow: f.escrow}, f.sink, zap.NewNop())
	return f
}

func (f *fixture) fundedAccount(amount uint64) uuid.UUID {
	account := uuid.New()
	f.bank.Mint(account, amount)
	return account
}

func (f *fixture) seedVerifier(active bool) uuid.UUID {
	account := uuid.New()
	f.state.Lock()
	f.state.PutVerifier(&ledger.Verifier{Account: account, Active: active, Reputation: 100})
	f.state.Unlock()
	return account
}

func validRequest() RegisterRequest {
	return RegisterRequest{
		Name:        "Rio Verde Reforestation",
		Location:    "Brazil",
		Methodology: "AR-ACM0003",
		Type:        ledger.ProjectTypeForest,
		Standard:    ledger.StandardVCS,
		VintageYear: 2023,
		Stake:       minStake,
	}
}

func TestRegisterProject(t *testing.T) {
	f := newFixture(t)
	developer := f.fundedAccount(minStake)

	id, err := f.svc.Register(developer, validRequest())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	p, ok := f.svc.Get(id)
	require.True(t, ok)
	assert.Equal(t, developer, p.Developer)
	assert.False(t, p.Verified)
	assert.False(t, p.Active)
	assert.Equal(t, uint64(10), p.RegisteredAt)
	assert.Equal(t, uint64(minStake), f.bank.Balance(f.escrow))
}

func TestRegisterProjectValidation(t *testing.T) {
	f := newFixture(t)
	developer := f.fundedAccount(minStake)

	req := validRequest()
	req.Type = "GEOTHERMAL"
	_, err := f.svc.Register(developer, req)
	assert.ErrorIs(t, err, ledger.ErrInvalidProjectType)

	req = validRequest()
	req.Standard = "ISO"
	_, err = f.svc.Register(developer, req)
	assert.ErrorIs(t, err, ledger.ErrInvalidStandard)

	req = validRequest()
	req.Stake = minStake - 1
	_, err = f.svc.Register(developer, req)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStake)

	req = validRequest()
	req.VintageYear = 2020
	_, err = f.svc.Register(developer, req)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	assert.Equal(t, uint64(minStake), f.bank.Balance(developer), "no stake taken on any failure")
}

func TestProjectIDsAreMonotonic(t *testing.T) {
	f := newFixture(t)
	developer := f.fundedAccount(3 * minStake)

	for want := uint64(1); want <= 3; want++ {
		id, err := f.svc.Register(developer, validRequest())
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestVerifyProject(t *testing.T) {
	f := newFixture(t)
	developer := f.fundedAccount(minStake)
	id, err := f.svc.Register(developer, validRequest())
	require.NoError(t, err)
	verifier := f.seedVerifier(true)

	f.clock.SetHeight(25)
	require.NoError(t, f.svc.Verify(verifier, id))

	p, _ := f.svc.Get(id)
	assert.True(t, p.Verified)
	assert.True(t, p.Active)
	assert.Equal(t, uint64(25), p.UpdatedAt)

	f.state.Lock()
	v, _ := f.state.VerifierByAccount(verifier)
	f.state.Unlock()
	assert.Equal(t, uint64(110), v.Reputation)
	assert.Equal(t, uint64(1), v.ProjectsVerified)
}

func TestVerifyProjectFailures(t *testing.T) {
	f := newFixture(t)
	developer := f.fundedAccount(minStake)
	id, err := f.svc.Register(developer, validRequest())
	require.NoError(t, err)
	verifier := f.seedVerifier(true)

	assert.ErrorIs(t, f.svc.Verify(verifier, 99), ledger.ErrProjectNotFound)
	assert.ErrorIs(t, f.svc.Verify(uuid.New(), id), ledger.ErrInvalidVerifier)

	inactive := f.seedVerifier(false)
	assert.ErrorIs(t, f.svc.Verify(inactive, id), ledger.ErrInvalidVerifier)
}

func TestVerifyProjectTwiceDoesNotReapplyBonus(t *testing.T) {
	f := newFixture(t)
	developer := f.fundedAccount(minStake)
	id, err := f.svc.Register(developer, validRequest())
	require.NoError(t, err)
	verifier := f.seedVerifier(true)

	require.NoError(t, f.svc.Verify(verifier, id))
	assert.ErrorIs(t, f.svc.Verify(verifier, id), ledger.ErrInvalidVerificationStatus)

	f.state.Lock()
	v, _ := f.state.VerifierByAccount(verifier)
	f.state.Unlock()
	assert.Equal(t, uint64(110), v.Reputation, "bonus applied exactly once")
}

func TestIssueCredits(t *testing.T) {
	f := newFixture(t)
	developer := f.fundedAccount(minStake)
	id, err := f.svc.Register(developer, validRequest())
	require.NoError(t, err)
	require.NoError(t, f.svc.Verify(f.seedVerifier(true), id))

	f.sink.On("Record", mock.AnythingOfType("*ledger.Transaction")).Once()

	require.NoError(t, f.svc.Issue(developer, id, 1000, 10))

	p, _ := f.svc.Get(id)
	assert.Equal(t, uint64(1000), p.TotalIssued)
	assert.Equal(t, uint64(1000), p.Available())
	assert.Equal(t, uint64(10), p.PricePerCredit)
	assert.Equal(t, uint64(1000), f.svc.Balance(developer, id))

	f.state.Lock()
	tx, ok := f.state.TransactionByID(1)
	require.True(t, ok)
	assert.Equal(t, ledger.TxIssuance, tx.Type)
	assert.Zero(t, tx.Price, "issuance is not a monetary trade")
	assert.Equal(t, developer, tx.Buyer)
	assert.Equal(t, developer, tx.Seller)
	require.NoError(t, f.state.CheckConservation(id))
	f.state.Unlock()

	f.sink.AssertExpectations(t)
}

func TestIssueBeforeVerifyFails(t *testing.T) {
	f := newFixture(t)
	developer := f.fundedAccount(minStake)
	id, err := f.svc.Register(developer, validRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Issue(developer, id, 1000, 10), ledger.ErrProjectNotVerified)
	assert.Zero(t, f.svc.Balance(developer, id))
}

func TestIssueValidation(t *testing.T) {
	f := newFixture(t)
	developer := f.fundedAccount(minStake)
	id, err := f.svc.Register(developer, validRequest())
	require.NoError(t, err)
	require.NoError(t, f.svc.Verify(f.seedVerifier(true), id))

	assert.ErrorIs(t, f.svc.Issue(developer, 99, 10, 10), ledger.ErrProjectNotFound)
	assert.ErrorIs(t, f.svc.Issue(uuid.New(), id, 10, 10), ledger.ErrNotAuthorized)
	assert.ErrorIs(t, f.svc.Issue(developer, id, 0, 10), ledger.ErrInvalidAmount)
	assert.ErrorIs(t, f.svc.Issue(developer, id, 10, 0), ledger.ErrInvalidPrice)
}
