package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/orders"
)

// maxErrorBody caps how much of a failed response is kept on TransportError.
const maxErrorBody = 2048

// TransportError is any failure talking to the bulk orders backend: a network
// error, a non-2xx status or an undecodable response.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CreateResult is what the backend answers to a create request.
type CreateResult struct {
	OrderID string `json:"orderId"`
}

// Client talks to the bulk orders backend over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// CreateBulkOrder posts the order and returns the backend-assigned order id.
// The order is verified before anything is sent.
func (c *Client) CreateBulkOrder(ctx context.Context, order orders.BulkOrder) (CreateResult, error) {
	if err := order.Verify(); err != nil {
		return CreateResult{}, err
	}
	body, err := json.Marshal(order)
	if err != nil {
		return CreateResult{}, fmt.Errorf("marshal bulk order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bulkOrders", bytes.NewReader(body))
	if err != nil {
		return CreateResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var res CreateResult
	if err := c.do(req, "create bulk order", &res); err != nil {
		return CreateResult{}, err
	}
	if res.OrderID == "" {
		return CreateResult{}, &TransportError{Op: "create bulk order", Err: fmt.Errorf("response has no orderId")}
	}

	c.log.WithFields(logrus.Fields{
		"order_id":   res.OrderID,
		"amount":     order.Amount.String(),
		"recipients": len(order.SalesOrders),
	}).Info("bulk order created")
	return res, nil
}

// BulkOrdersByEmail lists the bulk orders placed by a payee.
func (c *Client) BulkOrdersByEmail(ctx context.Context, email string) ([]orders.BulkOrder, error) {
	q := url.Values{"payeeEmail": []string{email}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bulkOrders?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var out []orders.BulkOrder
	if err := c.do(req, "list bulk orders", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []orders.BulkOrder{}
	}
	return out, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
