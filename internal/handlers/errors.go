package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/backend"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/drafts"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/hampers"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/logging"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/orders"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/recipients"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/submissions"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/validation"
)

// writeError maps service errors to a JSON error response.
func writeError(c *gin.Context, log *logrus.Logger, funcName string, err error) {
	var (
		fe  validation.FieldErrors
		ge  *drafts.GateError
		ste *drafts.SubmissionTransportError
		te  *backend.TransportError
		ure *orders.UnknownHamperReferenceError
	)

	switch {
	case errors.Is(err, drafts.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "draft_not_found"})
	case errors.Is(err, drafts.ErrHamperNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "hamper_not_found"})
	case errors.Is(err, recipients.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": "recipient_not_found"})
	case errors.Is(err, hampers.ErrMissingID), errors.Is(err, hampers.ErrNegativePrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_hamper", "msg": err.Error()})
	case errors.As(err, &fe):
		validation.WriteFieldErrors(c, fe)
	case errors.As(err, &ge):
		c.JSON(http.StatusConflict, gin.H{"error": "action_disabled", "action": ge.Action, "problems": ge.Problems})
	case errors.Is(err, drafts.ErrConfirmationRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation_required"})
	case errors.Is(err, drafts.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "submission_in_flight"})
	case errors.Is(err, submissions.ErrKeyReused):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "idempotency_key_reused"})
	case errors.As(err, &ure):
		c.JSON(http.StatusConflict, gin.H{"error": "unknown_hamper_reference", "row": ure.Row, "hamperId": ure.HamperID})
	case errors.As(err, &ste):
		logging.LogError(log, "handlers", funcName, "submission transport", nil, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "submission_failed", "detail": ste.Err.Error()})
	case errors.As(err, &te):
		logging.LogError(log, "handlers", funcName, "backend transport", nil, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend_unavailable", "detail": te.Error()})
	default:
		logging.LogError(log, "handlers", funcName, "unexpected error", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
