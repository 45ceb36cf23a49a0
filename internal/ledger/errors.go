package ledger

import "errors"

// Typed failure reasons surfaced by every mutating operation. Handlers map
// these to HTTP status codes; services wrap them with context via %w.
var (
	ErrNotAuthorized             = errors.New("not authorized")
	ErrInvalidProjectType        = errors.New("invalid project type")
	ErrInvalidStandard           = errors.New("invalid verification standard")
	ErrProjectExists             = errors.New("project already exists")
	ErrProjectNotFound           = errors.New("project not found")
	ErrInsufficientCredits       = errors.New("insufficient credits")
	ErrInvalidAmount             = errors.New("invalid amount")
	ErrTransferFailed            = errors.New("transfer failed")
	ErrProjectNotVerified        = errors.New("project not verified")
	ErrCreditsRetired            = errors.New("credits already retired")
	ErrInvalidVerificationStatus = errors.New("invalid verification status")
	ErrVerifierExists            = errors.New("verifier already registered")
	ErrInvalidVerifier           = errors.New("invalid verifier")
	ErrInsufficientStake         = errors.New("insufficient stake")
	ErrTradingPaused             = errors.New("trading is paused")
	ErrInvalidPrice              = errors.New("invalid price")
	ErrOrderNotFound             = errors.New("order not found")
	ErrCannotFillOwnOrder        = errors.New("cannot fill own order")
)
