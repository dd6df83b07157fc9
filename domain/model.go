package domain

import (
	"regexp"
	"time"
)

// Station is the kitchen station an order line is prepared at.
type Station string

const (
	StationGrill    Station = "Grill"
	StationFryer    Station = "Fryer"
	StationAssembly Station = "Assembly"
)

// Stations lists all kitchen stations in display order.
var Stations = []Station{StationGrill, StationFryer, StationAssembly}

// Status is an order lifecycle state. The kitchen flow uses
// received/preparing/plating/ready, the simplified customer flow uses
// new/in-progress/ready. Both end at ready.
type Status string

const (
	StatusReceived   Status = "received"
	StatusPreparing  Status = "preparing"
	StatusPlating    Status = "plating"
	StatusReady      Status = "ready"
	StatusNew        Status = "new"
	StatusInProgress Status = "in-progress"
)

// MenuItem is the canonical menu entry. IDs are strings; numeric server IDs
// are stringified during normalization and locally generated placeholder IDs
// carry a "tmp-" prefix until the backend confirms the create.
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl"`
	Available   bool    `json:"isAvailable"`
	Popular     bool    `json:"isPopular,omitempty"`
}

// DisplayCategory returns the category shown to customers. Items the server
// stored without a category render under "Misc".
func (m MenuItem) DisplayCategory() string {
	if m.Category == "" {
		return "Misc"
	}
	return m.Category
}

// OrderLine is a single line of an order routed to one station.
type OrderLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Station  Station `json:"station"`
}

// Order is the canonical order. CompletedAt stays zero while the order is
// non-terminal and is immutable once set.
type Order struct {
	ID                 string      `json:"id"`
	Code               string      `json:"code"`
	Status             Status      `json:"status"`
	ReceivedAt         time.Time   `json:"receivedAt"`
	CompletedAt        time.Time   `json:"completedAt,omitzero"`
	SpecialInstruction string      `json:"specialInstruction,omitempty"`
	Items              []OrderLine `json:"items"`
}

var criticalPattern = regexp.MustCompile(`(?i)allerg|rush|urgent`)

// CriticalInstruction reports whether the special instruction flags an
// allergy or an urgent request and must be emphasised on the ticket.
func (o Order) CriticalInstruction() bool {
	return o.SpecialInstruction != "" && criticalPattern.MatchString(o.SpecialInstruction)
}

// Clone returns a deep copy. Rollback snapshots hold cloned values so a
// restore cannot alias the line slice of a since-mutated order.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = make([]OrderLine, len(o.Items))
		copy(c.Items, o.Items)
	}
	return c
}

// CartLine pairs a menu item with a positive quantity.
type CartLine struct {
	Item     MenuItem `json:"item"`
	Quantity int      `json:"quantity"`
}

// Cart is an ordered list of cart lines. All operations return a new cart;
// a line whose quantity would drop to zero is removed, never kept at zero.
type Cart []CartLine

// Add increments the quantity for the item, appending a new line on first add.
func (c Cart) Add(item MenuItem) Cart {
	next := make(Cart, len(c))
	copy(next, c)
	for i, line := range next {
		if line.Item.ID == item.ID {
			next[i].Quantity++
			return next
		}
	}
	return append(next, CartLine{Item: item, Quantity: 1})
}

// Remove decrements the quantity for the item, dropping the line at zero.
func (c Cart) Remove(id string) Cart {
	next := make(Cart, 0, len(c))
	for _, line := range c {
		if line.Item.ID == id {
			line.Quantity--
		}
		if line.Quantity > 0 {
			next = append(next, line)
		}
	}
	return next
}

// Total returns the cart price total.
func (c Cart) Total() float64 {
	var sum float64
	for _, line := range c {
		sum += line.Item.Price * float64(line.Quantity)
	}
	return sum
}

// Count returns the total quantity across all lines.
func (c Cart) Count() int {
	var n int
	for _, line := range c {
		n += line.Quantity
	}
	return n
}
