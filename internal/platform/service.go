package platform

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/bank"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Params identifies the privileged accounts.
type Params struct {
	Owner  uuid.UUID
	Escrow uuid.UUID
}

// Service runs platform administration: the trading switch, fee withdrawal
// and aggregate statistics.
type Service struct {
	state  *ledger.State
	bank   bank.Bank
	params Params
	logger *zap.Logger
}

// NewService creates a platform administration service.
func NewService(state *ledger.State, b bank.Bank, params Params, logger *zap.Logger) *Service {
	return &Service{state: state, bank: b, params: params, logger: logger}
}

// ToggleTrading flips the global trading switch and returns its new state.
// Owner only.
func (s *Service) ToggleTrading(caller uuid.UUID) (bool, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if caller != s.params.Owner {
		return false, fmt.Errorf("account %s is not the platform owner: %w", caller, ledger.ErrNotAuthorized)
	}

	enabled := !s.state.TradingEnabled()
	s.state.SetTradingEnabled(enabled)

	s.logger.Info("Trading switch toggled", zap.Bool("enabled", enabled))
	return enabled, nil
}

// WithdrawFees moves amount of accumulated platform fees from the escrow to
// the owner. Owner only.
func (s *Service) WithdrawFees(caller uuid.UUID, amount uint64) error {
	s.state.Lock()
	defer s.state.Unlock()

	if caller != s.params.Owner {
		return fmt.Errorf("account %s is not the platform owner: %w", caller, ledger.ErrNotAuthorized)
	}
	if amount > s.state.FeeBalance() {
		return fmt.Errorf("withdrawing %d of %d accumulated fees: %w", amount, s.state.FeeBalance(), ledger.ErrInsufficientCredits)
	}

	if err := s.bank.Transfer(amount, s.params.Escrow, s.params.Owner); err != nil {
		return fmt.Errorf("fee withdrawal: %w", err)
	}
	if err := s.state.DeductFees(amount); err != nil {
		return err
	}

	s.logger.Info("Fees withdrawn", zap.Uint64("amount", amount))
	return nil
}

// Stats snapshots the platform-wide counters.
func (s *Service) Stats() ledger.Stats {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Stats()
}
