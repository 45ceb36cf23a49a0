package ledger

import "github.com/google/uuid"

// ProjectType categorizes the offset methodology family of a project.
type ProjectType string

const (
	ProjectTypeForest           ProjectType = "FOREST"
	ProjectTypeRenewable        ProjectType = "RENEWABLE"
	ProjectTypeMethane          ProjectType = "METHANE"
	ProjectTypeSoil             ProjectType = "SOIL"
	ProjectTypeDirectAirCapture ProjectType = "DIRECT_AIR_CAPTURE"
)

// Valid reports whether t is one of the recognized project types.
func (t ProjectType) Valid() bool {
	switch t {
	case ProjectTypeForest, ProjectTypeRenewable, ProjectTypeMethane,
		ProjectTypeSoil, ProjectTypeDirectAirCapture:
		return true
	}
	return false
}

// Standard identifies the certification standard a project or verifier
// operates under.
type Standard string

const (
	StandardVCS      Standard = "VCS"
	StandardGold     Standard = "GOLD"
	StandardCDM      Standard = "CDM"
	StandardPlanVivo Standard = "PLAN_VIVO"
)

// Valid reports whether s is one of the recognized standards.
func (s Standard) Valid() bool {
	switch s {
	case StandardVCS, StandardGold, StandardCDM, StandardPlanVivo:
		return true
	}
	return false
}

// TxType tags entries in the transaction log.
type TxType string

const (
	TxIssuance   TxType = "ISSUANCE"
	TxPurchase   TxType = "PURCHASE"
	TxRetirement TxType = "RETIREMENT"
)

// Project is a registered emission-offset project. Available credits are not
// tracked separately: available == TotalIssued - Retired.
type Project struct {
	ID             uint64      `json:"id"`
	Developer      uuid.UUID   `json:"developer"`
	Name           string      `json:"name"`
	Location       string      `json:"location"`
	Methodology    string      `json:"methodology"`
	Type           ProjectType `json:"type"`
	Standard       Standard    `json:"standard"`
	VintageYear    int         `json:"vintage_year"`
	TotalIssued    uint64      `json:"total_credits_issued"`
	Retired        uint64      `json:"retired_credits"`
	PricePerCredit uint64      `json:"price_per_credit"`
	RegisteredAt   uint64      `json:"registered_at"`
	UpdatedAt      uint64      `json:"updated_at"`
	Verified       bool        `json:"verified"`
	Active         bool        `json:"active"`
	Stake          uint64      `json:"stake"`
}

// Available returns issued-minus-retired for the project.
func (p *Project) Available() uint64 {
	return p.TotalIssued - p.Retired
}

// Verifier is an accredited auditor account. Reputation starts at 100 and
// grows by 10 per completed verification.
type Verifier struct {
	Account          uuid.UUID `json:"account"`
	Organization     string    `json:"organization"`
	Standard         Standard  `json:"standard"`
	ProjectsVerified uint64    `json:"projects_verified"`
	RegisteredAt     uint64    `json:"registered_at"`
	Stake            uint64    `json:"stake"`
	Active           bool      `json:"active"`
	Reputation       uint64    `json:"reputation"`
}

// Order is a resting sell order. While active, Amount-Filled credits are held
// in a ledger reservation, already debited from the seller's balance.
type Order struct {
	ID             uint64    `json:"id"`
	Seller         uuid.UUID `json:"seller"`
	ProjectID      uint64    `json:"project_id"`
	Amount         uint64    `json:"amount"`
	PricePerCredit uint64    `json:"price_per_credit"`
	TotalValue     uint64    `json:"total_value"`
	CreatedAt      uint64    `json:"created_at"`
	ExpiresAt      uint64    `json:"expires_at"`
	Active         bool      `json:"active"`
	Filled         uint64    `json:"filled_amount"`
}

// Remaining returns the unfilled quantity of the order.
func (o *Order) Remaining() uint64 {
	return o.Amount - o.Filled
}

// Expired reports whether the order can no longer be filled at the given
// height. Expired orders keep their escrow until the seller cancels.
func (o *Order) Expired(height uint64) bool {
	return height >= o.ExpiresAt
}

// Retirement is the immutable record of a permanent credit burn.
type Retirement struct {
	ID          uint64    `json:"id"`
	Account     uuid.UUID `json:"account"`
	ProjectID   uint64    `json:"project_id"`
	Amount      uint64    `json:"amount"`
	RetiredAt   uint64    `json:"retired_at"`
	Reason      string    `json:"reason"`
	Certificate [32]byte  `json:"-"`
}

// Transaction is one entry in the append-only audit trail. For issuance and
// retirement events buyer == seller == actor and Price is 0.
type Transaction struct {
	ID        uint64    `json:"id"`
	Buyer     uuid.UUID `json:"buyer"`
	Seller    uuid.UUID `json:"seller"`
	ProjectID uint64    `json:"project_id"`
	Amount    uint64    `json:"amount"`
	Price     uint64    `json:"price"`
	Height    uint64    `json:"height"`
	Type      TxType    `json:"type"`
}

// Stats aggregates the platform-wide counters.
type Stats struct {
	TotalIssued    uint64 `json:"total_credits_issued"`
	TotalRetired   uint64 `json:"total_credits_retired"`
	FeeBalance     uint64 `json:"fee_balance"`
	TradingEnabled bool   `json:"trading_enabled"`
	Projects       uint64 `json:"projects"`
	Verifiers      uint64 `json:"verifiers"`
	Orders         uint64 `json:"orders"`
	Retirements    uint64 `json:"retirements"`
	Transactions   uint64 `json:"transactions"`
}
