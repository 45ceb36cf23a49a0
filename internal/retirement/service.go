package retirement

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/audit"
	"carbon-market/credit-exchange/exchange-backend/internal/bank"
	"carbon-market/credit-exchange/exchange-backend/internal/chain"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Params holds the retirement engine's tunables.
type Params struct {
	Fee    uint64
	Escrow uuid.UUID
}

// Service runs the retirement engine: the permanent exit point for credits.
type Service struct {
	state   *ledger.State
	bank    bank.Bank
	clock   chain.Clock
	params  Params
	sink    audit.Sink
	archive Repository
	logger  *zap.Logger
}

// NewService creates a retirement service. sink and archive may be nil.
func NewService(state *ledger.State, b bank.Bank, clock chain.Clock, params Params, sink audit.Sink, archive Repository, logger *zap.Logger) *Service {
	return &Service{state: state, bank: b, clock: clock, params: params, sink: sink, archive: archive, logger: logger}
}

// Retire permanently burns amount credits from the caller's balance and
// writes the immutable retirement record. A fixed retirement fee moves to the
// platform escrow first; if that transfer fails nothing is written. Returns
// the retirement id.
func (s *Service) Retire(caller uuid.UUID, projectID, amount uint64, reason string) (*ledger.Retirement, error) {
	s.state.Lock()
	defer s.state.Unlock()

	project, ok := s.state.ProjectByID(projectID)
	if !ok {
		return nil, fmt.Errorf("project %d: %w", projectID, ledger.ErrProjectNotFound)
	}
	if s.state.BalanceOf(caller, projectID) < amount {
		return nil, fmt.Errorf("retiring %d credits of project %d: %w", amount, projectID, ledger.ErrInsufficientCredits)
	}
	if amount == 0 {
		return nil, fmt.Errorf("amount %d: %w", amount, ledger.ErrInvalidAmount)
	}

	if err := s.bank.Transfer(s.params.Fee, caller, s.params.Escrow); err != nil {
		return nil, fmt.Errorf("retirement fee: %w", err)
	}

	if err := s.state.Debit(caller, projectID, amount); err != nil {
		return nil, err
	}

	height := s.clock.Height()
	record := &ledger.Retirement{
		ID:        s.state.NextRetirementID(),
		Account:   caller,
		ProjectID: projectID,
		Amount:    amount,
		RetiredAt: height,
		Reason:    reason,
	}
	record.Certificate = certificateHash(record)
	s.state.PutRetirement(record)

	project.Retired += amount
	project.UpdatedAt = height

	s.state.AddRetired(amount)
	s.state.AddFees(s.params.Fee)

	tx := s.state.AppendTransaction(caller, caller, projectID, amount, 0, height, ledger.TxRetirement)
	if s.sink != nil {
		s.sink.Record(tx)
	}
	if s.archive != nil {
		s.archive.SaveCertificate(context.Background(), record, project)
	}

	s.logger.Info("Credits retired",
		zap.Uint64("retirement_id", record.ID),
		zap.Uint64("project_id", projectID),
		zap.Uint64("amount", amount),
		zap.String("account", caller.String()))

	cp := *record
	return &cp, nil
}

// Get returns one retirement record.
func (s *Service) Get(id uint64) (*ledger.Retirement, bool) {
	s.state.Lock()
	defer s.state.Unlock()
	r, ok := s.state.RetirementByID(id)
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

// CO2Offset returns the retired amount claimed by one record, reported as
// whole tonnes of CO2 equivalent.
func (s *Service) CO2Offset(id uint64) (uint64, bool) {
	s.state.Lock()
	defer s.state.Unlock()
	r, ok := s.state.RetirementByID(id)
	if !ok {
		return 0, false
	}
	return r.Amount, true
}

// certificateHash derives the opaque 32-byte certificate commitment from the
// record's immutable fields.
func certificateHash(r *ledger.Retirement) [32]byte {
	buf := make([]byte, 0, 16+32+len(r.Reason))
	buf = binary.BigEndian.AppendUint64(buf, r.ID)
	buf = append(buf, r.Account[:]...)
	buf = binary.BigEndian.AppendUint64(buf, r.ProjectID)
	buf = binary.BigEndian.AppendUint64(buf, r.Amount)
	buf = binary.BigEndian.AppendUint64(buf, r.RetiredAt)
	buf = append(buf, r.Reason...)
	return sha256.Sum256(buf)
}
