package domain

import (
	"sort"
	"strings"
)

// SortDirection orders a projection ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// StationAll matches every station in an order filter.
const StationAll = "ALL"

// OrderFilter selects the subset of orders a board displays. An order
// matches the station when any of its lines targets it; an empty or "ALL"
// station matches everything. The query is a case-insensitive substring
// match against the order code and item names; empty matches everything.
type OrderFilter struct {
	Station string
	Query   string
}

// FilterOrders projects the order collection through the filter, preserving
// relative order. The input is never mutated.
func FilterOrders(orders []Order, f OrderFilter) []Order {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if !matchesStation(o, f.Station) {
			continue
		}
		if q != "" && !matchesOrderQuery(o, q) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matchesStation(o Order, station string) bool {
	if station == "" || station == StationAll {
		return true
	}
	for _, line := range o.Items {
		if string(line.Station) == station {
			return true
		}
	}
	return false
}

func matchesOrderQuery(o Order, q string) bool {
	if strings.Contains(strings.ToLower(o.Code), q) {
		return true
	}
	for _, line := range o.Items {
		if strings.Contains(strings.ToLower(line.Name), q) {
			return true
		}
	}
	return false
}

// CategoryAll matches every category in a menu filter.
const CategoryAll = "All"

// MenuFilter selects the subset of menu items a list displays. The query
// matches case-insensitively against name, category and description.
type MenuFilter struct {
	Category string
	Query    string
}

// FilterMenuItems projects the menu collection through the filter,
// preserving relative order.
func FilterMenuItems(items []MenuItem, f MenuFilter) []MenuItem {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]MenuItem, 0, len(items))
	for _, it := range items {
		if f.Category != "" && f.Category != CategoryAll && it.DisplayCategory() != f.Category {
			continue
		}
		if q != "" && !matchesMenuQuery(it, q) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesMenuQuery(it MenuItem, q string) bool {
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.Category), q) ||
		strings.Contains(strings.ToLower(it.Description), q)
}

// SortMenuItems returns a stably sorted copy by the given key (name, price
// or category). Null fields (a category or description the server never
// set) order first ascending and last descending; price compares
// numerically, everything else as case-sensitive lexical strings.
func SortMenuItems(items []MenuItem, key string, dir SortDirection) []MenuItem {
	out := make([]MenuItem, len(items))
	copy(out, items)
	desc := dir == SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		c := compareMenuItems(out[i], out[j], key)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareMenuItems(a, b MenuItem, key string) int {
	switch key {
	case "price":
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		default:
			return 0
		}
	case "category":
		return compareNullable(a.Category, b.Category)
	case "description":
		return compareNullable(a.Description, b.Description)
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

// compareNullable orders empty (null) values before every non-null value;
// the direction-aware caller flips that to nulls-last when descending.
func compareNullable(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	default:
		return strings.Compare(a, b)
	}
}
