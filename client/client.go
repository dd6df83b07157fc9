// Package client talks to the kitchen backend over its request/response
// API. It is the only place besides the feed decoder that sees raw
// server-shaped payloads; everything it returns is already normalized into
// the canonical model.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/Kush-Patel15/KDS-system/domain"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Client is the backend API client. The base URL is opaque configuration
// injected by the host.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the backend at base.
func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// FetchMenuItems loads all menu items. The payload is unwrapped from the
// backend's occasional extra nesting level; records that fail normalization
// are logged and skipped so one bad row does not take down the whole menu.
func (c *Client) FetchMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	body, err := c.get(ctx, "/menu-items")
	if err != nil {
		return nil, err
	}
	entries, err := domain.UnwrapItems(body)
	if err != nil {
		return nil, err
	}
	items := make([]domain.MenuItem, 0, len(entries))
	for _, entry := range entries {
		var raw domain.RawMenuItem
		if err := sonic.ConfigStd.Unmarshal(entry, &raw); err != nil {
			log.WithError(err).Warn("skipping undecodable menu record")
			continue
		}
		item, err := domain.NormalizeMenuItem(raw)
		if err != nil {
			log.WithError(err).Warn("skipping malformed menu record")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// FetchActiveOrders loads the orders currently in the pipeline.
func (c *Client) FetchActiveOrders(ctx context.Context) ([]domain.Order, error) {
	body, err := c.get(ctx, "/orders/active")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := sonic.ConfigStd.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: active orders payload", domain.ErrMalformedPayload)
	}
	orders := make([]domain.Order, 0, len(payload.Orders))
	for _, entry := range payload.Orders {
		var raw domain.RawOrder
		if err := sonic.ConfigStd.Unmarshal(entry, &raw); err != nil {
			log.WithError(err).Warn("skipping undecodable order record")
			continue
		}
		order, err := domain.NormalizeOrder(raw)
		if err != nil {
			log.WithError(err).Warn("skipping malformed order record")
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// FetchOrderByCode looks one order up by its human-readable code. A leading
// "#" is tolerated. A backend 404 surfaces as domain.ErrOrderNotFound,
// distinct from transport errors.
func (c *Client) FetchOrderByCode(ctx context.Context, code string) (domain.Order, error) {
	code = strings.TrimPrefix(strings.TrimSpace(code), "#")
	body, err := c.get(ctx, "/orders/order-id/"+code)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, err
	}
	return decodeOrderEnvelope(body)
}

// OrderDraft is the payload for placing an order.
type OrderDraft struct {
	Cart          domain.Cart
	CustomerName  string
	CustomerPhone string
	OrderType     string // pickup | delivery
}

type orderLineReq struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

type createOrderReq struct {
	Items         []orderLineReq `json:"items"`
	CustomerName  string         `json:"customerName"`
	CustomerPhone string         `json:"customerPhone"`
	OrderType     string         `json:"orderType"`
}

// CreateOrder places an order from cart lines plus customer contact info.
func (c *Client) CreateOrder(ctx context.Context, draft OrderDraft) (domain.Order, error) {
	req := createOrderReq{
		Items:         make([]orderLineReq, 0, len(draft.Cart)),
		CustomerName:  draft.CustomerName,
		CustomerPhone: draft.CustomerPhone,
		OrderType:     draft.OrderType,
	}
	for _, line := range draft.Cart {
		req.Items = append(req.Items, orderLineReq{MenuItemID: line.Item.ID, Quantity: line.Quantity})
	}
	body, err := c.do(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOrderEnvelope(body)
}

// UpdateOrderStatus patches an order's status. The backend speaks the
// upper-cased spelling; the returned record is authoritative for the exact
// status and completion timestamp.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	req := map[string]string{"status": strings.ToUpper(strings.ReplaceAll(string(status), "-", "_"))}
	body, err := c.do(ctx, http.MethodPatch, "/orders/"+id+"/status", req)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOrderEnvelope(body)
}

// CreateMenuItem creates a menu item and returns the authoritative record.
func (c *Client) CreateMenuItem(ctx context.Context, draft domain.MenuItem) (domain.MenuItem, error) {
	body, err := c.do(ctx, http.MethodPost, "/menu-items", menuItemReq(draft))
	if err != nil {
		return domain.MenuItem{}, err
	}
	return decodeMenuItem(body)
}

// UpdateMenuItem replaces a menu item and returns the authoritative record.
func (c *Client) UpdateMenuItem(ctx context.Context, id string, item domain.MenuItem) (domain.MenuItem, error) {
	body, err := c.do(ctx, http.MethodPut, "/menu-items/"+id, menuItemReq(item))
	if err != nil {
		return domain.MenuItem{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.MenuItem{}, nil
	}
	return decodeMenuItem(body)
}

// DeleteMenuItem removes a menu item.
func (c *Client) DeleteMenuItem(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/menu-items/"+id, nil)
	return err
}

type menuItemPayload struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	IsAvailable bool    `json:"isAvailable"`
	IsPopular   bool    `json:"isPopular"`
}

func menuItemReq(item domain.MenuItem) menuItemPayload {
	p := menuItemPayload{
		Name:        item.Name,
		Price:       item.Price,
		IsAvailable: item.Available,
		IsPopular:   item.Popular,
	}
	if item.Category != "" {
		p.Category = &item.Category
	}
	if item.Description != "" {
		p.Description = &item.Description
	}
	return p
}

func decodeMenuItem(body []byte) (domain.MenuItem, error) {
	var raw domain.RawMenuItem
	if err := sonic.ConfigStd.Unmarshal(body, &raw); err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: menu item response", domain.ErrMalformedPayload)
	}
	return domain.NormalizeMenuItem(raw)
}

// decodeOrderEnvelope accepts both a bare order record and the
// {"order": {...}} envelope some endpoints use.
func decodeOrderEnvelope(body []byte) (domain.Order, error) {
	var envelope struct {
		Order json.RawMessage `json:"order"`
	}
	record := json.RawMessage(body)
	if err := sonic.ConfigStd.Unmarshal(body, &envelope); err == nil && len(envelope.Order) > 0 {
		record = envelope.Order
	}
	var raw domain.RawOrder
	if err := sonic.ConfigStd.Unmarshal(record, &raw); err != nil {
		return domain.Order{}, fmt.Errorf("%w: order response", domain.ErrMalformedPayload)
	}
	return domain.NormalizeOrder(raw)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	start := time.Now()
	var reqBody io.Reader
	if payload != nil {
		data, err := sonic.ConfigStd.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	log.WithFields(log.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"total_ms": time.Since(start).Milliseconds(),
	}).Debug("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{method: method, path: path, code: resp.StatusCode}
	}
	return body, nil
}

type statusError struct {
	method string
	path   string
	code   int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d", e.method, e.path, e.code)
}
