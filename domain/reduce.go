package domain

// Event reduction over the canonical collections. Every reducer is a pure
// function from a collection and one event to the next collection: the input
// slice is never mutated, existing entries are never reordered, and created
// entries append at the end. Unmatched updated/status events are no-ops (a
// partial update never synthesizes a new entity) and re-delivery of the
// same created/deleted event is idempotent, which is what lets the feed run
// on at-least-once delivery.

func menuIndex(items []MenuItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func orderIndex(orders []Order, id string) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// ReduceMenu applies a menu event to the customer-facing collection.
// Unavailable items never enter this view: a created event for an
// unavailable item is skipped outright, and an updated event marking an item
// unavailable removes it (a soft delete from this view only). ReduceMenuAdmin
// keeps such items; the two views diverge on availability.
func ReduceMenu(items []MenuItem, ev MenuEvent) []MenuItem {
	switch ev.Type {
	case EventCreated:
		if ev.Item == nil || !ev.Item.Available {
			return items
		}
		if menuIndex(items, ev.Item.ID) >= 0 {
			return items
		}
		next := make([]MenuItem, len(items), len(items)+1)
		copy(next, items)
		return append(next, *ev.Item)
	case EventUpdated:
		if ev.Item == nil {
			return items
		}
		idx := menuIndex(items, ev.Item.ID)
		if idx < 0 {
			return items
		}
		if !ev.Item.Available {
			return removeMenuItem(items, idx)
		}
		next := make([]MenuItem, len(items))
		copy(next, items)
		next[idx] = *ev.Item
		return next
	case EventDeleted:
		idx := menuIndex(items, ev.ID)
		if idx < 0 {
			return items
		}
		return removeMenuItem(items, idx)
	default:
		return items
	}
}

// ReduceMenuAdmin applies a menu event to the admin-facing collection, which
// shows every item regardless of availability.
func ReduceMenuAdmin(items []MenuItem, ev MenuEvent) []MenuItem {
	switch ev.Type {
	case EventCreated:
		if ev.Item == nil || menuIndex(items, ev.Item.ID) >= 0 {
			return items
		}
		next := make([]MenuItem, len(items), len(items)+1)
		copy(next, items)
		return append(next, *ev.Item)
	case EventUpdated:
		if ev.Item == nil {
			return items
		}
		idx := menuIndex(items, ev.Item.ID)
		if idx < 0 {
			return items
		}
		next := make([]MenuItem, len(items))
		copy(next, items)
		next[idx] = *ev.Item
		return next
	case EventDeleted:
		idx := menuIndex(items, ev.ID)
		if idx < 0 {
			return items
		}
		return removeMenuItem(items, idx)
	default:
		return items
	}
}

// ReduceOrders applies an order event to the order collection. Status events
// touch only the status and, on the transition into the terminal state, the
// completion timestamp; every other field of the matched order is preserved.
// A completion timestamp, once set, is never overwritten.
func ReduceOrders(orders []Order, ev OrderEvent) []Order {
	switch ev.Type {
	case EventCreated:
		if ev.Order == nil || orderIndex(orders, ev.Order.ID) >= 0 {
			return orders
		}
		next := make([]Order, len(orders), len(orders)+1)
		copy(next, orders)
		return append(next, ev.Order.Clone())
	case EventUpdated:
		if ev.Order == nil {
			return orders
		}
		idx := orderIndex(orders, ev.Order.ID)
		if idx < 0 {
			return orders
		}
		next := make([]Order, len(orders))
		copy(next, orders)
		next[idx] = ev.Order.Clone()
		return next
	case EventDeleted:
		idx := orderIndex(orders, ev.ID)
		if idx < 0 {
			return orders
		}
		next := make([]Order, 0, len(orders)-1)
		next = append(next, orders[:idx]...)
		return append(next, orders[idx+1:]...)
	case EventStatus:
		idx := orderIndex(orders, ev.ID)
		if idx < 0 {
			return orders
		}
		next := make([]Order, len(orders))
		copy(next, orders)
		o := next[idx]
		if ev.Status != "" {
			o.Status = ev.Status
		}
		if o.CompletedAt.IsZero() && !ev.CompletedAt.IsZero() {
			o.CompletedAt = ev.CompletedAt
		}
		next[idx] = o
		return next
	default:
		return orders
	}
}

func removeMenuItem(items []MenuItem, idx int) []MenuItem {
	next := make([]MenuItem, 0, len(items)-1)
	next = append(next, items[:idx]...)
	return append(next, items[idx+1:]...)
}
