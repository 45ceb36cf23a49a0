package verifiers

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/bank"
	"carbon-market/credit-exchange/exchange-backend/internal/chain"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Params holds the registry's tunables.
type Params struct {
	MinStake uint64
	Escrow   uuid.UUID
}

// Service runs the verifier registry: stake-gated registration of auditor
// accounts and their reputation.
type Service struct {
	state  *ledger.State
	bank   bank.Bank
	clock  chain.Clock
	params Params
	logger *zap.Logger
}

// NewService creates a verifier registry service.
func NewService(state *ledger.State, b bank.Bank, clock chain.Clock, params Params, logger *zap.Logger) *Service {
	return &Service{state: state, bank: b, clock: clock, params: params, logger: logger}
}

// Register admits caller as an accredited verifier. The stake moves to the
// platform escrow and stays locked; there is no deregistration path.
func (s *Service) Register(caller uuid.UUID, organization string, standard ledger.Standard, stake uint64) (*ledger.Verifier, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if stake < s.params.MinStake {
		return nil, fmt.Errorf("stake %d below minimum %d: %w", stake, s.params.MinStake, ledger.ErrInsufficientStake)
	}
	if !standard.Valid() {
		return nil, fmt.Errorf("standard %q: %w", standard, ledger.ErrInvalidStandard)
	}
	if _, ok := s.state.VerifierByAccount(caller); ok {
		return nil, fmt.Errorf("account %s: %w", caller, ledger.ErrVerifierExists)
	}

	if err := s.bank.Transfer(stake, caller, s.params.Escrow); err != nil {
		return nil, fmt.Errorf("stake deposit: %w", err)
	}

	verifier := &ledger.Verifier{
		Account:      caller,
		Organization: organization,
		Standard:     standard,
		RegisteredAt: s.clock.Height(),
		Stake:        stake,
		Active:       true,
		Reputation:   100,
	}
	s.state.PutVerifier(verifier)

	s.logger.Info("Verifier registered",
		zap.String("account", caller.String()),
		zap.String("organization", organization),
		zap.String("standard", string(standard)),
		zap.Uint64("stake", stake))

	cp := *verifier
	return &cp, nil
}

// Get returns one verifier record.
func (s *Service) Get(account uuid.UUID) (*ledger.Verifier, bool) {
	s.state.Lock()
	defer s.state.Unlock()
	v, ok := s.state.VerifierByAccount(account)
	if !ok {
		return nil, false
	}
	cp := *v
	return &cp, true
}
