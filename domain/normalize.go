package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PlaceholderImage is substituted when the server omits an image reference.
const PlaceholderImage = "/placeholder.png"

// RawMenuItem mirrors a server-shaped menu record. Optional fields are
// pointers so absent and zero values stay distinguishable.
type RawMenuItem struct {
	ID          any     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	IsAvailable *bool   `json:"isAvailable"`
	IsPopular   *bool   `json:"isPopular"`
}

// RawMenuRef is the embedded menu item reference some order payloads carry
// on each line.
type RawMenuRef struct {
	Name        string  `json:"name"`
	StationType string  `json:"stationType"`
	Category    *string `json:"category"`
}

// RawOrderItem mirrors a server-shaped order line. The item name and station
// may arrive in any of three places depending on the backend serializer.
type RawOrderItem struct {
	ID           any         `json:"id"`
	Name         string      `json:"name"`
	MenuItemName string      `json:"menuItemName"`
	Quantity     int         `json:"quantity"`
	StationType  string      `json:"stationType"`
	Category     *string     `json:"category"`
	MenuItem     *RawMenuRef `json:"menuItem"`
}

// RawOrder mirrors a server-shaped order record.
type RawOrder struct {
	ID                 any            `json:"id"`
	Code               string         `json:"code"`
	OrderID            string         `json:"orderId"`
	Status             string         `json:"status"`
	CreatedAt          string         `json:"createdAt"`
	CompletedAt        string         `json:"completedAt"`
	SpecialInstruction string         `json:"specialInstruction"`
	Items              []RawOrderItem `json:"items"`
}

// NormalizeID canonicalizes a server identifier, which may arrive as a JSON
// string or number, into the string form used throughout the core. Returns
// "" when no usable identifier is present.
func NormalizeID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

// NormalizeMenuItem maps a raw menu record into the canonical model.
// Missing optional fields get defaults and never fail; a record without a
// usable identifier or name, or with a negative price, is malformed.
// Absent availability normalizes to available (fail open).
func NormalizeMenuItem(raw RawMenuItem) (MenuItem, error) {
	id := NormalizeID(raw.ID)
	if id == "" || raw.Name == "" {
		return MenuItem{}, fmt.Errorf("%w: menu item without id or name", ErrMalformedPayload)
	}
	if raw.Price < 0 {
		return MenuItem{}, fmt.Errorf("%w: menu item %s with negative price", ErrMalformedPayload, id)
	}
	item := MenuItem{
		ID:        id,
		Name:      raw.Name,
		Price:     raw.Price,
		ImageURL:  PlaceholderImage,
		Available: true,
	}
	if raw.Category != nil {
		item.Category = *raw.Category
	}
	if raw.Description != nil {
		item.Description = *raw.Description
	}
	if raw.ImageURL != nil && *raw.ImageURL != "" {
		item.ImageURL = *raw.ImageURL
	}
	if raw.IsAvailable != nil {
		item.Available = *raw.IsAvailable
	}
	if raw.IsPopular != nil {
		item.Popular = *raw.IsPopular
	}
	return item, nil
}

// NormalizeOrder maps a raw order record into the canonical model. The
// human-readable code falls back to ORD-{id} when the server omits one and
// statuses are folded to the lower-case dashed vocabulary.
func NormalizeOrder(raw RawOrder) (Order, error) {
	id := NormalizeID(raw.ID)
	if id == "" {
		return Order{}, fmt.Errorf("%w: order without id", ErrMalformedPayload)
	}
	code := raw.Code
	if code == "" {
		code = raw.OrderID
	}
	if code == "" {
		code = "ORD-" + id
	}
	order := Order{
		ID:                 id,
		Code:               code,
		Status:             NormalizeStatus(raw.Status),
		ReceivedAt:         parseTime(raw.CreatedAt),
		CompletedAt:        parseTime(raw.CompletedAt),
		SpecialInstruction: raw.SpecialInstruction,
		Items:              make([]OrderLine, 0, len(raw.Items)),
	}
	for _, it := range raw.Items {
		order.Items = append(order.Items, normalizeOrderItem(it))
	}
	return order, nil
}

// NormalizeStatus folds server status spellings (READY, IN_PROGRESS, ...)
// into the canonical lower-case dashed form, defaulting to received.
func NormalizeStatus(s string) Status {
	if s == "" {
		return StatusReceived
	}
	return Status(strings.ReplaceAll(strings.ToLower(s), "_", "-"))
}

func normalizeOrderItem(raw RawOrderItem) OrderLine {
	line := OrderLine{
		ID:       NormalizeID(raw.ID),
		Name:     raw.Name,
		Quantity: raw.Quantity,
	}
	if raw.MenuItem != nil && raw.MenuItem.Name != "" {
		line.Name = raw.MenuItem.Name
	} else if raw.MenuItemName != "" {
		line.Name = raw.MenuItemName
	}
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	switch {
	case raw.MenuItem != nil && raw.MenuItem.StationType != "":
		line.Station = Station(raw.MenuItem.StationType)
	case raw.StationType != "":
		line.Station = Station(raw.StationType)
	default:
		category := ""
		if raw.MenuItem != nil && raw.MenuItem.Category != nil {
			category = *raw.MenuItem.Category
		} else if raw.Category != nil {
			category = *raw.Category
		}
		line.Station = DeriveStation(category)
	}
	return line
}

// DeriveStation maps a category to the station that prepares it. Unknown and
// empty categories fall through to Assembly.
func DeriveStation(category string) Station {
	switch strings.ToUpper(category) {
	case "PIZZA", "BURGER", "BURGERS", "GRILL":
		return StationGrill
	case "SIDES", "FRIES", "FRYER":
		return StationFryer
	default:
		return StationAssembly
	}
}

type wrappedItems struct {
	Items     []json.RawMessage `json:"items"`
	MenuItems []json.RawMessage `json:"menuItems"`
}

// UnwrapItems flattens the menu items payload to a sequence of records.
// The backend sometimes wraps the array in an extra nesting level, and some
// deployments return an object keyed items or menuItems instead of a bare
// array; both quirks are absorbed here so nothing downstream re-checks
// shapes. An unrecognizable payload is malformed.
func UnwrapItems(data json.RawMessage) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		var wrapped wrappedItems
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: items payload is neither array nor object", ErrMalformedPayload)
		}
		if wrapped.Items != nil {
			return wrapped.Items, nil
		}
		return wrapped.MenuItems, nil
	}
	// One extra nesting level: [[{...}, ...]] instead of [{...}, ...].
	if len(entries) > 0 {
		var inner []json.RawMessage
		if err := json.Unmarshal(entries[0], &inner); err == nil && inner != nil {
			return inner, nil
		}
	}
	return entries, nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
