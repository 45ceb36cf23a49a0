package projects

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/audit"
	"carbon-market/credit-exchange/exchange-backend/internal/bank"
	"carbon-market/credit-exchange/exchange-backend/internal/chain"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Earliest vintage the registry accepts; credits generated before this are
// not tradeable here.
const minVintageYear = 2021

// Params holds the registry's tunables.
type Params struct {
	MinStake uint64
	Escrow   uuid.UUID
}

// RegisterRequest carries the fields of a new project registration.
type RegisterRequest struct {
	Name        string
	Location    string
	Methodology string
	Type        ledger.ProjectType
	Standard    ledger.Standard
	VintageYear int
	Stake       uint64
}

// Service runs the project registry: registration, verification and credit
// issuance.
type Service struct {
	state  *ledger.State
	bank   bank.Bank
	clock  chain.Clock
	params Params
	sink   audit.Sink
	logger *zap.Logger
}

// NewService creates a project registry service. sink may be nil.
func NewService(state *ledger.State, b bank.Bank, clock chain.Clock, params Params, sink audit.Sink, logger *zap.Logger) *Service {
	return &Service{state: state, bank: b, clock: clock, params: params, sink: sink, logger: logger}
}

// Register stores a new, unverified project and locks the developer's stake
// in escrow. Returns the assigned project id.
func (s *Service) Register(caller uuid.UUID, req RegisterRequest) (uint64, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if !req.Type.Valid() {
		return 0, fmt.Errorf("project type %q: %w", req.Type, ledger.ErrInvalidProjectType)
	}
	if !req.Standard.Valid() {
		return 0, fmt.Errorf("standard %q: %w", req.Standard, ledger.ErrInvalidStandard)
	}
	if req.Stake < s.params.MinStake {
		return 0, fmt.Errorf("stake %d below minimum %d: %w", req.Stake, s.params.MinStake, ledger.ErrInsufficientStake)
	}
	if req.VintageYear < minVintageYear {
		return 0, fmt.Errorf("vintage year %d: %w", req.VintageYear, ledger.ErrInvalidAmount)
	}

	if err := s.bank.Transfer(req.Stake, caller, s.params.Escrow); err != nil {
		return 0, fmt.Errorf("stake deposit: %w", err)
	}

	height := s.clock.Height()
	project := &ledger.Project{
		ID:           s.state.NextProjectID(),
		Developer:    caller,
		Name:         req.Name,
		Location:     req.Location,
		Methodology:  req.Methodology,
		Type:         req.Type,
		Standard:     req.Standard,
		VintageYear:  req.VintageYear,
		RegisteredAt: height,
		UpdatedAt:    height,
		Stake:        req.Stake,
	}
	s.state.PutProject(project)

	s.logger.Info("Project registered",
		zap.Uint64("project_id", project.ID),
		zap.String("developer", caller.String()),
		zap.String("type", string(req.Type)),
		zap.String("standard", string(req.Standard)))

	return project.ID, nil
}

// Verify marks a project as verified and active. Only an active verifier may
// do so, and only once per project; the verifier earns 10 reputation.
func (s *Service) Verify(caller uuid.UUID, projectID uint64) error {
	s.state.Lock()
	defer s.state.Unlock()

	project, ok := s.state.ProjectByID(projectID)
	if !ok {
		return fmt.Errorf("project %d: %w", projectID, ledger.ErrProjectNotFound)
	}
	verifier, ok := s.state.VerifierByAccount(caller)
	if !ok || !verifier.Active {
		return fmt.Errorf("account %s: %w", caller, ledger.ErrInvalidVerifier)
	}
	if project.Verified {
		return fmt.Errorf("project %d already verified: %w", projectID, ledger.ErrInvalidVerificationStatus)
	}

	project.Verified = true
	project.Active = true
	project.UpdatedAt = s.clock.Height()

	verifier.ProjectsVerified++
	verifier.Reputation += 10

	s.logger.Info("Project verified",
		zap.Uint64("project_id", projectID),
		zap.String("verifier", caller.String()),
		zap.Uint64("reputation", verifier.Reputation))

	return nil
}

// Issue mints amount credits against a verified project into the developer's
// balance and records the new price per credit. The issuance transaction
// carries price 0: minting is not a monetary trade.
func (s *Service) Issue(caller uuid.UUID, projectID, amount, price uint64) error {
	s.state.Lock()
	defer s.state.Unlock()

	project, ok := s.state.ProjectByID(projectID)
	if !ok {
		return fmt.Errorf("project %d: %w", projectID, ledger.ErrProjectNotFound)
	}
	if project.Developer != caller {
		return fmt.Errorf("account %s is not the developer of project %d: %w", caller, projectID, ledger.ErrNotAuthorized)
	}
	if !project.Verified || !project.Active {
		return fmt.Errorf("project %d: %w", projectID, ledger.ErrProjectNotVerified)
	}
	if amount == 0 {
		return fmt.Errorf("amount %d: %w", amount, ledger.ErrInvalidAmount)
	}
	if price == 0 {
		return fmt.Errorf("price %d: %w", price, ledger.ErrInvalidPrice)
	}
	if amount > math.MaxUint64-project.TotalIssued {
		return fmt.Errorf("issuance overflows project supply: %w", ledger.ErrInvalidAmount)
	}

	height := s.clock.Height()
	project.TotalIssued += amount
	project.PricePerCredit = price
	project.UpdatedAt = height

	s.state.Credit(caller, projectID, amount)
	s.state.AddIssued(amount)

	tx := s.state.AppendTransaction(caller, caller, projectID, amount, 0, height, ledger.TxIssuance)
	if s.sink != nil {
		s.sink.Record(tx)
	}

	s.logger.Info("Credits issued",
		zap.Uint64("project_id", projectID),
		zap.Uint64("amount", amount),
		zap.Uint64("price", price))

	return nil
}

// Get returns one project record.
func (s *Service) Get(projectID uint64) (*ledger.Project, bool) {
	s.state.Lock()
	defer s.state.Unlock()
	p, ok := s.state.ProjectByID(projectID)
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// Balance returns an account's credit balance for one project.
func (s *Service) Balance(account uuid.UUID, projectID uint64) uint64 {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.BalanceOf(account, projectID)
}
