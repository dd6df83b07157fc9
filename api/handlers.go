// Package api is the read-side gateway: it re-serves the reconciled state
// to display shells (kitchen boards, customer menus, admin consoles) as
// JSON views and an SSE stream, and forwards their edits through the
// optimistic mutation controller.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/Kush-Patel15/KDS-system/client"
	"github.com/Kush-Patel15/KDS-system/domain"
)

// State is the slice of the state container the gateway reads.
type State interface {
	MenuSnapshot() []domain.MenuItem
	AdminMenuSnapshot() []domain.MenuItem
	OrdersSnapshot() []domain.Order
	Subscribe() chan struct{}
	Unsubscribe(chan struct{})
}

// Mutator is the optimistic mutation controller surface.
type Mutator interface {
	CreateMenuItem(ctx context.Context, draft domain.MenuItem) (domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, item domain.MenuItem) (domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
	ToggleFlag(ctx context.Context, id, field string) (domain.MenuItem, error)
	AdvanceOrder(ctx context.Context, id string) (domain.Order, error)
}

// Backend is the slice of the backend client served directly (operations
// that do not go through local optimistic state).
type Backend interface {
	CreateOrder(ctx context.Context, draft client.OrderDraft) (domain.Order, error)
	FetchOrderByCode(ctx context.Context, code string) (domain.Order, error)
}

// Highlights exposes the transient just-arrived markers.
type Highlights interface {
	Snapshot() []string
}

type handlers struct {
	state      State
	mutator    Mutator
	backend    Backend
	highlights Highlights
	flow       domain.Flow
}

// Register wires up the gateway routes on the given Echo instance.
func Register(e *echo.Echo, state State, mutator Mutator, backend Backend, highlights Highlights, flow domain.Flow) {
	h := &handlers{state: state, mutator: mutator, backend: backend, highlights: highlights, flow: flow}

	e.GET("/board", h.board)
	e.GET("/stream", h.stream)
	e.GET("/menu", h.menu)
	e.GET("/orders/track/:code", h.track)
	e.POST("/orders", h.placeOrder)
	e.POST("/orders/:id/advance", h.advanceOrder)

	admin := e.Group("/admin", requireRole("admin"))
	admin.GET("/menu", h.adminMenu)
	admin.POST("/menu-items", h.createMenuItem)
	admin.PUT("/menu-items/:id", h.updateMenuItem)
	admin.DELETE("/menu-items/:id", h.deleteMenuItem)
	admin.POST("/menu-items/:id/toggle", h.toggleMenuItem)
}

// requireRole gates a route group on the role string the host was handed.
// The role arrives as a trusted header; enforcement beyond matching it is
// somebody else's job.
func requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Role") != role {
				return c.JSON(http.StatusForbidden, errView{Error: "role " + role + " required"})
			}
			return next(c)
		}
	}
}

type errView struct {
	Error string `json:"error"`
}

type boardView struct {
	Lanes      map[domain.Status][]domain.Order `json:"lanes"`
	Flow       []domain.Status                  `json:"flow"`
	Stats      domain.Stats                     `json:"stats"`
	CoarseLoad string                           `json:"coarseLoad"`
	TopItems   []domain.ItemCount               `json:"topItems"`
	Highlights []string                         `json:"highlights"`
}

func (h *handlers) buildBoard(filter domain.OrderFilter) boardView {
	orders := h.state.OrdersSnapshot()
	filtered := domain.FilterOrders(orders, filter)
	stats := domain.ComputeStats(orders)
	view := boardView{
		Lanes:      h.flow.Lanes(filtered),
		Flow:       h.flow,
		Stats:      stats,
		CoarseLoad: domain.CoarseLoad(stats.Active),
		TopItems:   domain.TopItems(orders, 3),
		Highlights: []string{},
	}
	if h.highlights != nil {
		view.Highlights = h.highlights.Snapshot()
	}
	return view
}

func (h *handlers) board(c echo.Context) error {
	filter := domain.OrderFilter{
		Station: c.QueryParam("station"),
		Query:   c.QueryParam("q"),
	}
	return c.JSON(http.StatusOK, h.buildBoard(filter))
}

// stream re-broadcasts the board over SSE on every store change. Filters
// apply per connection.
func (h *handlers) stream(c echo.Context) error {
	filter := domain.OrderFilter{
		Station: c.QueryParam("station"),
		Query:   c.QueryParam("q"),
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.String(http.StatusInternalServerError, "stream unsupported")
	}
	ctx := c.Request().Context()
	ch := h.state.Subscribe()
	defer h.state.Unsubscribe(ch)
	for {
		data, err := json.Marshal(h.buildBoard(filter))
		if err != nil {
			c.Logger().Error(err)
			return err
		}
		if _, err := c.Response().Write([]byte("data: ")); err != nil {
			return nil
		}
		if _, err := c.Response().Write(data); err != nil {
			return nil
		}
		if _, err := c.Response().Write([]byte("\n\n")); err != nil {
			return nil
		}
		flusher.Flush()
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
		}
	}
}

type menuItemView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl"`
	IsAvailable bool    `json:"isAvailable"`
	IsPopular   bool    `json:"isPopular"`
}

func menuViews(items []domain.MenuItem) []menuItemView {
	out := make([]menuItemView, 0, len(items))
	for _, it := range items {
		out = append(out, menuItemView{
			ID:          it.ID,
			Name:        it.Name,
			Price:       it.Price,
			Category:    it.DisplayCategory(),
			Description: it.Description,
			ImageURL:    it.ImageURL,
			IsAvailable: it.Available,
			IsPopular:   it.Popular,
		})
	}
	return out
}

func projectMenu(items []domain.MenuItem, c echo.Context) []domain.MenuItem {
	filtered := domain.FilterMenuItems(items, domain.MenuFilter{
		Category: c.QueryParam("category"),
		Query:    c.QueryParam("q"),
	})
	if key := c.QueryParam("sort"); key != "" {
		dir := domain.SortDirection(c.QueryParam("dir"))
		if dir != domain.SortDesc {
			dir = domain.SortAsc
		}
		filtered = domain.SortMenuItems(filtered, key, dir)
	}
	return filtered
}

func (h *handlers) menu(c echo.Context) error {
	return c.JSON(http.StatusOK, menuViews(projectMenu(h.state.MenuSnapshot(), c)))
}

func (h *handlers) adminMenu(c echo.Context) error {
	return c.JSON(http.StatusOK, menuViews(projectMenu(h.state.AdminMenuSnapshot(), c)))
}

type menuItemReq struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	IsAvailable *bool   `json:"isAvailable"`
	IsPopular   bool    `json:"isPopular"`
}

func (r menuItemReq) toDraft() (domain.MenuItem, error) {
	if r.Name == "" {
		return domain.MenuItem{}, errors.New("name is required")
	}
	if r.Price < 0 {
		return domain.MenuItem{}, errors.New("price must be non-negative")
	}
	draft := domain.MenuItem{
		Name:        r.Name,
		Price:       r.Price,
		Category:    r.Category,
		Description: r.Description,
		Available:   true,
		Popular:     r.IsPopular,
	}
	if r.IsAvailable != nil {
		draft.Available = *r.IsAvailable
	}
	return draft, nil
}

func (h *handlers) createMenuItem(c echo.Context) error {
	var req menuItemReq
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errView{Error: "invalid body"})
	}
	draft, err := req.toDraft()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errView{Error: err.Error()})
	}
	saved, err := h.mutator.CreateMenuItem(c.Request().Context(), draft)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errView{Error: err.Error()})
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *handlers) updateMenuItem(c echo.Context) error {
	var req menuItemReq
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errView{Error: "invalid body"})
	}
	draft, err := req.toDraft()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errView{Error: err.Error()})
	}
	saved, err := h.mutator.UpdateMenuItem(c.Request().Context(), c.Param("id"), draft)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errView{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *handlers) deleteMenuItem(c echo.Context) error {
	if err := h.mutator.DeleteMenuItem(c.Request().Context(), c.Param("id")); err != nil {
		return c.JSON(http.StatusBadGateway, errView{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) toggleMenuItem(c echo.Context) error {
	var req struct {
		Field string `json:"field"`
	}
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errView{Error: "invalid body"})
	}
	saved, err := h.mutator.ToggleFlag(c.Request().Context(), c.Param("id"), req.Field)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errView{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, saved)
}

type placeOrderReq struct {
	Items []struct {
		MenuItemID any `json:"menuItemId"`
		Quantity   int `json:"quantity"`
	} `json:"items"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	OrderType     string `json:"orderType"`
}

func (h *handlers) placeOrder(c echo.Context) error {
	var req placeOrderReq
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errView{Error: "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, errView{Error: "cart is empty"})
	}
	draft := client.OrderDraft{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		OrderType:     req.OrderType,
	}
	for _, line := range req.Items {
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		draft.Cart = append(draft.Cart, domain.CartLine{
			Item:     domain.MenuItem{ID: domain.NormalizeID(line.MenuItemID)},
			Quantity: qty,
		})
	}
	order, err := h.backend.CreateOrder(c.Request().Context(), draft)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errView{Error: err.Error()})
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *handlers) advanceOrder(c echo.Context) error {
	order, err := h.mutator.AdvanceOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadGateway, errView{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, order)
}

func (h *handlers) track(c echo.Context) error {
	order, err := h.backend.FetchOrderByCode(c.Request().Context(), c.Param("code"))
	if errors.Is(err, domain.ErrOrderNotFound) {
		return c.JSON(http.StatusNotFound, errView{Error: "order not found"})
	}
	if err != nil {
		return c.JSON(http.StatusBadGateway, errView{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, order)
}
