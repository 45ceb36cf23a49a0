package ledger

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// BalanceKey addresses one spendable credit balance.
type BalanceKey struct {
	Account uuid.UUID
	Project uint64
}

// reservation is the escrowed remainder of one open order, held outside any
// spendable balance so conservation can be checked mechanically.
type reservation struct {
	Project  uint64
	Quantity uint64
}

// State is the single ledger every operation reads and mutates. The host
// sequences operations one at a time; services take the embedded mutex for
// the full duration of each public operation, so every accessor below assumes
// the lock is held. All entity ids are monotonic and start at 1.
type State struct {
	sync.Mutex

	balances     map[BalanceKey]uint64
	reservations map[uint64]reservation

	projects     map[uint64]*Project
	verifiers    map[uuid.UUID]*Verifier
	orders       map[uint64]*Order
	retirements  map[uint64]*Retirement
	transactions map[uint64]*Transaction

	nextProjectID     uint64
	nextOrderID       uint64
	nextRetirementID  uint64
	nextTransactionID uint64

	totalIssued    uint64
	totalRetired   uint64
	feeBalance     uint64
	tradingEnabled bool
}

// NewState returns an empty ledger with trading enabled.
func NewState() *State {
	return &State{
		balances:          make(map[BalanceKey]uint64),
		reservations:      make(map[uint64]reservation),
		projects:          make(map[uint64]*Project),
		verifiers:         make(map[uuid.UUID]*Verifier),
		orders:            make(map[uint64]*Order),
		retirements:       make(map[uint64]*Retirement),
		transactions:      make(map[uint64]*Transaction),
		nextProjectID:     1,
		nextOrderID:       1,
		nextRetirementID:  1,
		nextTransactionID: 1,
		tradingEnabled:    true,
	}
}

// BalanceOf returns the spendable balance, defaulting to 0 when absent.
func (s *State) BalanceOf(account uuid.UUID, project uint64) uint64 {
	return s.balances[BalanceKey{Account: account, Project: project}]
}

// SetBalance overwrites one balance cell. Zero balances are kept out of the
// table so iteration stays proportional to live holdings.
func (s *State) SetBalance(account uuid.UUID, project uint64, value uint64) {
	key := BalanceKey{Account: account, Project: project}
	if value == 0 {
		delete(s.balances, key)
		return
	}
	s.balances[key] = value
}

// Credit adds amount to a balance.
func (s *State) Credit(account uuid.UUID, project uint64, amount uint64) {
	s.SetBalance(account, project, s.BalanceOf(account, project)+amount)
}

// Debit removes amount from a balance, failing without mutation when the
// balance is too small.
func (s *State) Debit(account uuid.UUID, project uint64, amount uint64) error {
	current := s.BalanceOf(account, project)
	if current < amount {
		return fmt.Errorf("balance %d, need %d: %w", current, amount, ErrInsufficientCredits)
	}
	s.SetBalance(account, project, current-amount)
	return nil
}

// Reserve records quantity credits as escrowed under orderID. The caller has
// already debited them from the seller's balance.
func (s *State) Reserve(orderID, project, quantity uint64) {
	s.reservations[orderID] = reservation{Project: project, Quantity: quantity}
}

// Reserved returns the quantity currently escrowed under orderID.
func (s *State) Reserved(orderID uint64) uint64 {
	return s.reservations[orderID].Quantity
}

// ConsumeReservation burns quantity out of an order's escrow, e.g. when the
// credits move to a buyer. The reservation is removed when it reaches zero.
func (s *State) ConsumeReservation(orderID, quantity uint64) error {
	r, ok := s.reservations[orderID]
	if !ok || r.Quantity < quantity {
		return fmt.Errorf("reservation for order %d: %w", orderID, ErrInsufficientCredits)
	}
	r.Quantity -= quantity
	if r.Quantity == 0 {
		delete(s.reservations, orderID)
	} else {
		s.reservations[orderID] = r
	}
	return nil
}

// ReleaseReservation removes an order's escrow entirely and returns the
// quantity that was held, 0 when none.
func (s *State) ReleaseReservation(orderID uint64) uint64 {
	r, ok := s.reservations[orderID]
	if !ok {
		return 0
	}
	delete(s.reservations, orderID)
	return r.Quantity
}

// EscrowedForProject sums the escrowed quantities of all open orders for one
// project.
func (s *State) EscrowedForProject(project uint64) uint64 {
	var total uint64
	for _, r := range s.reservations {
		if r.Project == project {
			total += r.Quantity
		}
	}
	return total
}

// NextProjectID assigns and returns the next project id.
func (s *State) NextProjectID() uint64 {
	id := s.nextProjectID
	s.nextProjectID++
	return id
}

// NextOrderID assigns and returns the next order id.
func (s *State) NextOrderID() uint64 {
	id := s.nextOrderID
	s.nextOrderID++
	return id
}

// NextRetirementID assigns and returns the next retirement id.
func (s *State) NextRetirementID() uint64 {
	id := s.nextRetirementID
	s.nextRetirementID++
	return id
}

// PutProject stores a project record.
func (s *State) PutProject(p *Project) {
	s.projects[p.ID] = p
}

// ProjectByID looks up a project.
func (s *State) ProjectByID(id uint64) (*Project, bool) {
	p, ok := s.projects[id]
	return p, ok
}

// PutVerifier stores a verifier record.
func (s *State) PutVerifier(v *Verifier) {
	s.verifiers[v.Account] = v
}

// VerifierByAccount looks up a verifier.
func (s *State) VerifierByAccount(account uuid.UUID) (*Verifier, bool) {
	v, ok := s.verifiers[account]
	return v, ok
}

// PutOrder stores an order record.
func (s *State) PutOrder(o *Order) {
	s.orders[o.ID] = o
}

// OrderByID looks up an order.
func (s *State) OrderByID(id uint64) (*Order, bool) {
	o, ok := s.orders[id]
	return o, ok
}

// Orders calls fn for every order in the book, open or not.
func (s *State) Orders(fn func(*Order)) {
	for _, o := range s.orders {
		fn(o)
	}
}

// PutRetirement stores a retirement record.
func (s *State) PutRetirement(r *Retirement) {
	s.retirements[r.ID] = r
}

// RetirementByID looks up a retirement record.
func (s *State) RetirementByID(id uint64) (*Retirement, bool) {
	r, ok := s.retirements[id]
	return r, ok
}

// AppendTransaction writes the next entry of the audit trail and returns it.
func (s *State) AppendTransaction(buyer, seller uuid.UUID, project, amount, price, height uint64, typ TxType) *Transaction {
	tx := &Transaction{
		ID:        s.nextTransactionID,
		Buyer:     buyer,
		Seller:    seller,
		ProjectID: project,
		Amount:    amount,
		Price:     price,
		Height:    height,
		Type:      typ,
	}
	s.nextTransactionID++
	s.transactions[tx.ID] = tx
	return tx
}

// TransactionByID looks up an audit-trail entry.
func (s *State) TransactionByID(id uint64) (*Transaction, bool) {
	tx, ok := s.transactions[id]
	return tx, ok
}

// Transactions calls fn for every audit-trail entry in id order.
func (s *State) Transactions(fn func(*Transaction)) {
	for id := uint64(1); id < s.nextTransactionID; id++ {
		if tx, ok := s.transactions[id]; ok {
			fn(tx)
		}
	}
}

// TradingEnabled reports the global trading switch.
func (s *State) TradingEnabled() bool {
	return s.tradingEnabled
}

// SetTradingEnabled flips the global trading switch.
func (s *State) SetTradingEnabled(enabled bool) {
	s.tradingEnabled = enabled
}

// FeeBalance returns the accumulated platform fees.
func (s *State) FeeBalance() uint64 {
	return s.feeBalance
}

// AddFees accrues collected fees to the platform balance.
func (s *State) AddFees(amount uint64) {
	s.feeBalance += amount
}

// DeductFees removes withdrawn fees from the platform balance, failing when
// the balance is too small.
func (s *State) DeductFees(amount uint64) error {
	if s.feeBalance < amount {
		return fmt.Errorf("fee balance %d, need %d: %w", s.feeBalance, amount, ErrInsufficientCredits)
	}
	s.feeBalance -= amount
	return nil
}

// AddIssued bumps the platform-wide issuance counter.
func (s *State) AddIssued(amount uint64) {
	s.totalIssued += amount
}

// AddRetired bumps the platform-wide retirement counter.
func (s *State) AddRetired(amount uint64) {
	s.totalRetired += amount
}

// Stats snapshots the aggregate counters.
func (s *State) Stats() Stats {
	return Stats{
		TotalIssued:    s.totalIssued,
		TotalRetired:   s.totalRetired,
		FeeBalance:     s.feeBalance,
		TradingEnabled: s.tradingEnabled,
		Projects:       s.nextProjectID - 1,
		Verifiers:      uint64(len(s.verifiers)),
		Orders:         s.nextOrderID - 1,
		Retirements:    s.nextRetirementID - 1,
		Transactions:   s.nextTransactionID - 1,
	}
}

// CheckConservation verifies the credit conservation invariant for one
// project: everything ever issued is either held in a balance, escrowed in an
// open order, or retired.
func (s *State) CheckConservation(project uint64) error {
	p, ok := s.projects[project]
	if !ok {
		return fmt.Errorf("project %d: %w", project, ErrProjectNotFound)
	}
	var held uint64
	for key, qty := range s.balances {
		if key.Project == project {
			held += qty
		}
	}
	escrowed := s.EscrowedForProject(project)
	if held+escrowed+p.Retired != p.TotalIssued {
		return fmt.Errorf("project %d: held %d + escrowed %d + retired %d != issued %d",
			project, held, escrowed, p.Retired, p.TotalIssued)
	}
	return nil
}
