package market

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

// Fee rates are expressed in basis points against this denominator.
const feeDenominator = 10000

// Params holds the trading engine's tunables.
type Params struct {
	FeeBasisPoints uint64
	Escrow         uuid.UUID
}

// FillResult reports the outcome of one buy call.
type FillResult struct {
	OrderID       uint64 `json:"order_id"`
	Filled        uint64 `json:"filled"`
	TotalCost     uint64 `json:"total_cost"`
	Fee           uint64 `json:"fee"`
	SellerPayment uint64 `json:"seller_payment"`
	OrderActive   bool   `json:"order_active"`
}

// Service runs the order book: escrow-backed sell orders, partial fills
// against buy requests, fee extraction, and cancellation.
type Service struct {
	state  *ledger.State
	bank   bank.Bank
	clock  chain.Clock
	params Params
	sink   audit.Sink
	logger *zap.Logger
}

// NewService creates a trading service. sink may be nil.
func NewService(state *ledger.State, b bank.Bank, clock chain.Clock, params Params, sink audit.Sink, logger *zap.Logger) *Service {
	return &Service{state: state, bank: b, clock: clock, params: params, sink: sink, logger: logger}
}

// CreateSellOrder places a resting sell order. The credits leave the seller's
// spendable balance immediately and sit in a ledger reservation until filled
// or cancelled. Returns the order id.
func (s *Service) CreateSellOrder(caller uuid.UUID, projectID, amount, price, duration uint64) (uint64, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if !s.state.TradingEnabled() {
		return 0, ledger.ErrTradingPaused
	}
	if s.state.BalanceOf(caller, projectID) < amount {
		return 0, fmt.Errorf("selling %d credits of project %d: %w", amount, projectID, ledger.ErrInsufficientCredits)
	}
	if amount == 0 {
		return 0, fmt.Errorf("amount %d: %w", amount, ledger.ErrInvalidAmount)
	}
	if price == 0 {
		return 0, fmt.Errorf("price %d: %w", price, ledger.ErrInvalidPrice)
	}
	if amount > math.MaxUint64/price {
		return 0, fmt.Errorf("order value overflows: %w", ledger.ErrInvalidAmount)
	}

	if err := s.state.Debit(caller, projectID, amount); err != nil {
		return 0, err
	}

	height := s.clock.Height()
	order := &ledger.Order{
		ID:             s.state.NextOrderID(),
		Seller:         caller,
		ProjectID:      projectID,
		Amount:         amount,
		PricePerCredit: price,
		TotalValue:     amount * price,
		CreatedAt:      height,
		ExpiresAt:      height + duration,
		Active:         true,
	}
	s.state.Reserve(order.ID, projectID, amount)
	s.state.PutOrder(order)

	s.logger.Info("Sell order created",
		zap.Uint64("order_id", order.ID),
		zap.Uint64("project_id", projectID),
		zap.Uint64("amount", amount),
		zap.Uint64("price", price),
		zap.Uint64("expires_at", order.ExpiresAt))

	return order.ID, nil
}

// Buy fills up to requested credits from an open order. Partial fills are
// expected, never an error: the fill quantity is min(requested, remaining).
// The buyer pays the seller net of the platform fee; both transfers succeed
// or the call leaves no state behind. Expired orders are rejected but their
// escrow stays locked until the seller cancels.
func (s *Service) Buy(caller uuid.UUID, orderID, requested uint64) (*FillResult, error) {
	s.state.Lock()
	defer s.state.Unlock()

	height := s.clock.Height()
	order, ok := s.state.OrderByID(orderID)
	if !ok || !order.Active || order.Expired(height) {
		return nil, fmt.Errorf("order %d: %w", orderID, ledger.ErrOrderNotFound)
	}
	if order.Remaining() == 0 {
		return nil, fmt.Errorf("order %d has no remaining credits: %w", orderID, ledger.ErrInsufficientCredits)
	}
	if order.Seller == caller {
		return nil, fmt.Errorf("order %d: %w", orderID, ledger.ErrCannotFillOwnOrder)
	}

	fill := requested
	if remaining := order.Remaining(); fill > remaining {
		fill = remaining
	}

	totalCost := fill * order.PricePerCredit
	fee := totalCost * s.params.FeeBasisPoints / feeDenominator
	sellerPayment := totalCost - fee

	if err := s.bank.Transfer(sellerPayment, caller, order.Seller); err != nil {
		return nil, fmt.Errorf("settlement payment: %w", err)
	}
	if fee > 0 {
		if err := s.bank.Transfer(fee, caller, s.params.Escrow); err != nil {
			// Unwind the settlement leg so a failed call observably changes
			// nothing.
			_ = s.bank.Transfer(sellerPayment, order.Seller, caller)
			return nil, fmt.Errorf("fee payment: %w", err)
		}
	}

	if err := s.state.ConsumeReservation(orderID, fill); err != nil {
		return nil, err
	}
	s.state.Credit(caller, order.ProjectID, fill)

	order.Filled += fill
	if order.Filled == order.Amount {
		order.Active = false
	}

	s.state.AddFees(fee)
	tx := s.state.AppendTransaction(caller, order.Seller, order.ProjectID, fill, order.PricePerCredit, height, ledger.TxPurchase)
	if s.sink != nil {
		s.sink.Record(tx)
	}

	s.logger.Info("Order filled",
		zap.Uint64("order_id", orderID),
		zap.Uint64("filled", fill),
		zap.Uint64("total_cost", totalCost),
		zap.Uint64("fee", fee),
		zap.Bool("order_active", order.Active))

	return &FillResult{
		OrderID:       orderID,
		Filled:        fill,
		TotalCost:     totalCost,
		Fee:           fee,
		SellerPayment: sellerPayment,
		OrderActive:   order.Active,
	}, nil
}

// Cancel deactivates the caller's order and returns the unfilled remainder to
// their spendable balance. This is the only path that releases escrow,
// including for expired orders.
func (s *Service) Cancel(caller uuid.UUID, orderID uint64) (uint64, error) {
	s.state.Lock()
	defer s.state.Unlock()

	order, ok := s.state.OrderByID(orderID)
	if !ok {
		return 0, fmt.Errorf("order %d: %w", orderID, ledger.ErrOrderNotFound)
	}
	if order.Seller != caller {
		return 0, fmt.Errorf("order %d belongs to %s: %w", orderID, order.Seller, ledger.ErrNotAuthorized)
	}
	if !order.Active {
		return 0, fmt.Errorf("order %d is not active: %w", orderID, ledger.ErrOrderNotFound)
	}

	returned := s.state.ReleaseReservation(orderID)
	s.state.Credit(caller, order.ProjectID, returned)
	order.Active = false

	s.logger.Info("Order cancelled",
		zap.Uint64("order_id", orderID),
		zap.Uint64("returned", returned))

	return returned, nil
}

// Get returns one order record.
func (s *Service) Get(orderID uint64) (*ledger.Order, bool) {
	s.state.Lock()
	defer s.state.Unlock()
	o, ok := s.state.OrderByID(orderID)
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

// CountExpiredOpen reports how many orders are past expiry but still hold
// escrow. Expiry never auto-cancels; the sweep job logs this figure so
// sellers can be nudged to cancel.
func (s *Service) CountExpiredOpen() uint64 {
	s.state.Lock()
	defer s.state.Unlock()

	height := s.clock.Height()
	var n uint64
	s.state.Orders(func(o *ledger.Order) {
		if o.Active && o.Expired(height) {
			n++
		}
	})
	return n
}
