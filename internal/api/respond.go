package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Error writes a JSON error response with a status derived from the ledger's
// typed failure reasons.
func Error(c *gin.Context, err error) {
	c.JSON(status(err), gin.H{"error": err.Error()})
}

func status(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrProjectNotFound),
		errors.Is(err, ledger.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrVerifierExists),
		errors.Is(err, ledger.ErrProjectExists),
		errors.Is(err, ledger.ErrInvalidVerificationStatus):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, ledger.ErrInvalidProjectType),
		errors.Is(err, ledger.ErrInvalidStandard),
		errors.Is(err, ledger.ErrInvalidVerifier),
		errors.Is(err, ledger.ErrInsufficientStake),
		errors.Is(err, ledger.ErrInsufficientCredits),
		errors.Is(err, ledger.ErrProjectNotVerified),
		errors.Is(err, ledger.ErrCreditsRetired),
		errors.Is(err, ledger.ErrTradingPaused),
		errors.Is(err, ledger.ErrCannotFillOwnOrder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
