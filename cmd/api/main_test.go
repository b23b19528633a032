package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/config"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/drafts"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/handlers"
)

func testRouter(cors config.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{CORS: cors}
	svc := drafts.NewService(drafts.ServiceConfig{Repository: drafts.NewMemoryRepository(time.Hour)})
	return setupRouter(cfg, handlers.HandlerConfig{Drafts: svc})
}

func TestHealth(t *testing.T) {
	r := testRouter(config.CORSConfig{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCORS_ProductionAllowlist(t *testing.T) {
	r := testRouter(config.CORSConfig{Production: true, AllowedOrigins: []string{"https://orders.example.com"}})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/drafts", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://orders.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://orders.example.com" {
		t.Fatalf("expected allowed origin echoed, got %q (status %d)", got, w.Code)
	}

	w = preflight("https://evil.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin for a foreign site: %q", got)
	}
}

func TestCORS_AllowAllOutsideProduction(t *testing.T) {
	r := testRouter(config.CORSConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected *, got %q", got)
	}
}
