package audit

import (
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Sink receives committed transaction records. The ledger's in-memory log is
// authoritative; sinks are observability fan-out (archive, websocket feed)
// and must never fail an operation.
type Sink interface {
	Record(tx *ledger.Transaction)
}

// Fanout dispatches each record to every configured sink.
type Fanout []Sink

// Record implements Sink.
func (f Fanout) Record(tx *ledger.Transaction) {
	for _, s := range f {
		s.Record(tx)
	}
}

// Service answers read queries against the append-only transaction log.
type Service struct {
	state  *ledger.State
	logger *zap.Logger
}

// NewService creates an audit query service.
func NewService(state *ledger.State, logger *zap.Logger) *Service {
	return &Service{state: state, logger: logger}
}

// GetTransaction returns one audit-trail entry.
func (s *Service) GetTransaction(id uint64) (*ledger.Transaction, bool) {
	s.state.Lock()
	defer s.state.Unlock()
	tx, ok := s.state.TransactionByID(id)
	if !ok {
		return nil, false
	}
	cp := *tx
	return &cp, true
}

// ListTransactions returns the full audit trail in id order.
func (s *Service) ListTransactions() []ledger.Transaction {
	s.state.Lock()
	defer s.state.Unlock()
	var out []ledger.Transaction
	s.state.Transactions(func(tx *ledger.Transaction) {
		out = append(out, *tx)
	})
	return out
}
