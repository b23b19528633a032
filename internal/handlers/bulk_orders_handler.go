package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/logging"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/validation"
)

// RegisterBulkOrderRoutes registers the read path for a payee's bulk orders.
func RegisterBulkOrderRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := cfg.Validator
	if v == nil {
		v = validation.New()
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	r.GET("/bulk-orders", func(c *gin.Context) {
		email := strings.TrimSpace(c.Query("email"))
		if err := v.Var(email, "required,email"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_email"})
			return
		}

		list, err := cfg.Orders.BulkOrdersByEmail(c.Request.Context(), email)
		if err != nil {
			writeError(c, log, "BulkOrdersByEmail", err)
			return
		}
		c.JSON(http.StatusOK, list)
	})
}
