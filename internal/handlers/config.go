package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/drafts"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/orders"
)

// OrderLister is the read path of the bulk orders backend.
type OrderLister interface {
	BulkOrdersByEmail(ctx context.Context, email string) ([]orders.BulkOrder, error)
}

// HandlerConfig groups dependencies for the API handlers.
type HandlerConfig struct {
	Drafts    *drafts.Service
	Orders    OrderLister
	Validator *validatorv10.Validate
	Logger    *logrus.Logger
}

// RegisterRoutes registers the draft and bulk order routes.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	RegisterDraftRoutes(r, cfg)
	RegisterBulkOrderRoutes(r, cfg)
}
