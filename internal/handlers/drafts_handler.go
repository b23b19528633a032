package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/hampers"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/logging"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/orders"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/recipients"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/validation"
)

// RegisterDraftRoutes registers routes for composing and submitting a bulk order.
func RegisterDraftRoutes(r *gin.Engine, cfg HandlerConfig) {
	svc := cfg.Drafts
	v := cfg.Validator
	if v == nil {
		v = validation.New()
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	g := r.Group("/drafts")

	g.POST("", func(c *gin.Context) {
		view, err := svc.Create(c.Request.Context())
		if err != nil {
			writeError(c, log, "CreateDraft", err)
			return
		}
		c.Header("Location", "/drafts/"+view.Draft.ID)
		c.JSON(http.StatusCreated, view)
	})

	g.GET("/:id", func(c *gin.Context) {
		view, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, log, "GetDraft", err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, log, "DeleteDraft", err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	// hampers

	upsertHamper := func(c *gin.Context, hamperID string, status int) {
		var req validation.HamperRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}
		h := hampers.Hamper{ID: hamperID, HamperName: req.HamperName, Price: *req.Price}
		for _, content := range req.Contents {
			h.Contents = append(h.Contents, hampers.Content{ProductName: content.ProductName, Quantity: content.Quantity})
		}
		view, err := svc.UpsertHamper(c.Request.Context(), c.Param("id"), h)
		if err != nil {
			writeError(c, log, "UpsertHamper", err)
			return
		}
		c.JSON(status, gin.H{"hamperId": hamperID, "draft": view.Draft, "gate": view.Gate})
	}

	g.POST("/:id/hampers", func(c *gin.Context) {
		upsertHamper(c, uuid.NewString(), http.StatusCreated)
	})

	g.PUT("/:id/hampers/:hamperId", func(c *gin.Context) {
		upsertHamper(c, c.Param("hamperId"), http.StatusOK)
	})

	g.DELETE("/:id/hampers/:hamperId", func(c *gin.Context) {
		view, err := svc.RemoveHamper(c.Request.Context(), c.Param("id"), c.Param("hamperId"))
		if err != nil {
			writeError(c, log, "RemoveHamper", err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	// recipients

	g.POST("/:id/recipients", func(c *gin.Context) {
		item, ok := bindRecipient(c)
		if !ok {
			return
		}
		index, view, err := svc.AddRecipient(c.Request.Context(), c.Param("id"), item)
		if err != nil {
			writeError(c, log, "AddRecipient", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"index": index, "draft": view.Draft, "gate": view.Gate})
	})

	g.PUT("/:id/recipients/:index", func(c *gin.Context) {
		index, ok := indexParam(c)
		if !ok {
			return
		}
		item, ok := bindRecipient(c)
		if !ok {
			return
		}
		view, err := svc.UpdateRecipient(c.Request.Context(), c.Param("id"), index, item)
		if err != nil {
			writeError(c, log, "UpdateRecipient", err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	g.DELETE("/:id/recipients/:index", func(c *gin.Context) {
		index, ok := indexParam(c)
		if !ok {
			return
		}
		view, err := svc.RemoveRecipient(c.Request.Context(), c.Param("id"), index)
		if err != nil {
			writeError(c, log, "RemoveRecipient", err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	// payee and message

	g.PUT("/:id/payee", func(c *gin.Context) {
		var payee orders.Payee
		if err := c.ShouldBindJSON(&payee); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
			return
		}
		view, err := svc.SetPayee(c.Request.Context(), c.Param("id"), payee)
		if err != nil {
			writeError(c, log, "SetPayee", err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	g.PUT("/:id/message-template", func(c *gin.Context) {
		var req validation.MessageTemplateRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		view, err := svc.SetMessageTemplate(c.Request.Context(), c.Param("id"), req.Template)
		if err != nil {
			writeError(c, log, "SetMessageTemplate", err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	// gate, preview, cancel, submit

	g.GET("/:id/gate", func(c *gin.Context) {
		gate, err := svc.Gate(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, log, "Gate", err)
			return
		}
		c.JSON(http.StatusOK, gate)
	})

	g.GET("/:id/preview", func(c *gin.Context) {
		preview, err := svc.Preview(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, log, "Preview", err)
			return
		}
		c.JSON(http.StatusOK, preview)
	})

	g.POST("/:id/cancel", func(c *gin.Context) {
		var req validation.CancelRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		view, err := svc.Cancel(c.Request.Context(), c.Param("id"), req.Confirm)
		if err != nil {
			writeError(c, log, "Cancel", err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	g.POST("/:id/submit", func(c *gin.Context) {
		res, err := svc.Submit(c.Request.Context(), c.Param("id"), c.GetHeader("Idempotency-Key"))
		if res.IdempotencyKey != "" {
			c.Header("Idempotency-Key", res.IdempotencyKey)
		}
		if err != nil {
			writeError(c, log, "Submit", err)
			return
		}
		if res.Replayed {
			c.JSON(http.StatusOK, res)
			return
		}
		c.JSON(http.StatusCreated, res)
	})
}

// bindRecipient decodes a loosely typed recipient row. It writes a 400 and
// returns false when the body is not a usable row.
func bindRecipient(c *gin.Context) (recipients.Item, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
		return recipients.Item{}, false
	}
	item, err := recipients.Decode(raw)
	if err != nil {
		validation.WriteFieldErrors(c, err)
		return recipients.Item{}, false
	}
	return item, true
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_index"})
		return 0, false
	}
	return index, true
}
