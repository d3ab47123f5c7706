// Package client is a typed REST client for the stockroom API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/stockroom/internal/payments"
	"github.com/odyssey-erp/stockroom/internal/products"
	"github.com/odyssey-erp/stockroom/internal/purchasing"
	"github.com/odyssey-erp/stockroom/internal/vendors"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response. Body is the server's plain-text message.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if msg := strings.TrimSpace(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client calls the stockroom REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New builds a client for baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("client: base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "stockctl/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("client: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: %s: read response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: %s: decode response: %w", op, err)
	}
	return nil
}

func idPath(prefix string, id int64, suffix string) string {
	return prefix + "/" + strconv.FormatInt(id, 10) + suffix
}

// Vendors lists every vendor.
func (c *Client) Vendors(ctx context.Context) ([]vendors.Vendor, error) {
	var out []vendors.Vendor
	return out, c.do(ctx, "list vendors", http.MethodGet, "/api/vendors", nil, nil, &out)
}

// Vendor fetches one vendor.
func (c *Client) Vendor(ctx context.Context, id int64) (vendors.Vendor, error) {
	var out vendors.Vendor
	return out, c.do(ctx, "get vendor", http.MethodGet, idPath("/api/vendors", id, ""), nil, nil, &out)
}

// CreateVendor creates a vendor.
func (c *Client) CreateVendor(ctx context.Context, req vendors.CreateVendorRequest) (vendors.Vendor, error) {
	var out vendors.Vendor
	return out, c.do(ctx, "create vendor", http.MethodPost, "/api/vendors", req, nil, &out)
}

// Products lists every product.
func (c *Client) Products(ctx context.Context) ([]products.Product, error) {
	var out []products.Product
	return out, c.do(ctx, "list products", http.MethodGet, "/api/products", nil, nil, &out)
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id int64) (products.Product, error) {
	var out products.Product
	return out, c.do(ctx, "get product", http.MethodGet, idPath("/api/products", id, ""), nil, nil, &out)
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, req products.CreateProductRequest) (products.Product, error) {
	var out products.Product
	return out, c.do(ctx, "create product", http.MethodPost, "/api/products", req, nil, &out)
}

// Orders lists every purchase order.
func (c *Client) Orders(ctx context.Context) ([]purchasing.Order, error) {
	var out []purchasing.Order
	return out, c.do(ctx, "list orders", http.MethodGet, "/api/orders", nil, nil, &out)
}

// Order fetches one purchase order.
func (c *Client) Order(ctx context.Context, id int64) (purchasing.Order, error) {
	var out purchasing.Order
	return out, c.do(ctx, "get order", http.MethodGet, idPath("/api/orders", id, ""), nil, nil, &out)
}

// CreateOrder creates a PENDING purchase order.
func (c *Client) CreateOrder(ctx context.Context, req purchasing.CreateOrderRequest) (purchasing.Order, error) {
	var out purchasing.Order
	return out, c.do(ctx, "create order", http.MethodPost, "/api/orders", req, nil, &out)
}

// ApproveOrder approves a pending order.
func (c *Client) ApproveOrder(ctx context.Context, id int64) (purchasing.Order, error) {
	return c.orderAction(ctx, "approve order", id, "/approve", nil)
}

// CancelOrder cancels a pending or approved order.
func (c *Client) CancelOrder(ctx context.Context, id int64) (purchasing.Order, error) {
	return c.orderAction(ctx, "cancel order", id, "/cancel", nil)
}

// ReceiveOrder receives every outstanding unit of an approved order.
func (c *Client) ReceiveOrder(ctx context.Context, id int64) (purchasing.Order, error) {
	return c.orderAction(ctx, "receive order", id, "/receive", nil)
}

// ReceivePartial receives quantity units of one item.
func (c *Client) ReceivePartial(ctx context.Context, id, itemID int64, quantity int) (purchasing.Order, error) {
	body := purchasing.ReceivePartialRequest{ItemID: itemID, Quantity: quantity}
	return c.orderAction(ctx, "receive partial", id, "/receive-partial", body)
}

func (c *Client) orderAction(ctx context.Context, op string, id int64, suffix string, body any) (purchasing.Order, error) {
	var out purchasing.Order
	return out, c.do(ctx, op, http.MethodPost, idPath("/api/orders", id, suffix), body, nil, &out)
}

// Payments lists every payment.
func (c *Client) Payments(ctx context.Context) ([]payments.Payment, error) {
	var out []payments.Payment
	return out, c.do(ctx, "list payments", http.MethodGet, "/api/payments", nil, nil, &out)
}

// Payment fetches one payment.
func (c *Client) Payment(ctx context.Context, id int64) (payments.Payment, error) {
	var out payments.Payment
	return out, c.do(ctx, "get payment", http.MethodGet, idPath("/api/payments", id, ""), nil, nil, &out)
}

// OrderPayments lists the payments of one order.
func (c *Client) OrderPayments(ctx context.Context, orderID int64) ([]payments.Payment, error) {
	var out []payments.Payment
	return out, c.do(ctx, "list order payments", http.MethodGet, idPath("/api/payments/order", orderID, ""), nil, nil, &out)
}

// PaymentSummary returns the paid and outstanding amounts of an order.
func (c *Client) PaymentSummary(ctx context.Context, orderID int64) (payments.Summary, error) {
	var out payments.Summary
	return out, c.do(ctx, "payment summary", http.MethodGet, idPath("/api/payments/order", orderID, "/summary"), nil, nil, &out)
}

// RecordPayment records a payment. A non-empty idempotencyKey makes a
// replay fail with 409 instead of paying twice.
func (c *Client) RecordPayment(ctx context.Context, req payments.RecordPaymentRequest, idempotencyKey string) (payments.Payment, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{payments.IdempotencyHeader: idempotencyKey}
	}
	var out payments.Payment
	return out, c.do(ctx, "record payment", http.MethodPost, "/api/payments", req, headers, &out)
}

// ScanLowStock asks the worker for an immediate low stock scan.
func (c *Client) ScanLowStock(ctx context.Context) error {
	return c.do(ctx, "scan low stock", http.MethodPost, "/jobs/low-stock-scan", nil, nil, nil)
}
