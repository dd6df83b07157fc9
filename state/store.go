// Package state owns the canonical collections. Every mutation (feed
// events, initial fetch loads, optimistic local edits) passes through the
// Store under one mutex, so each reducer application is a discrete,
// non-preemptible step and no other component ever holds a live alias of a
// collection.
package state

import (
	"sync"

	"github.com/Kush-Patel15/KDS-system/domain"
)

// Store is the application state container: the exclusive owner of the
// customer-facing menu, the admin-facing menu and the order collection.
// Reads leave it only as copied snapshots.
type Store struct {
	mu        sync.Mutex
	menu      []domain.MenuItem // customer-facing, available items only
	adminMenu []domain.MenuItem // admin-facing, all items
	orders    []domain.Order

	closed bool
	subs   map[chan struct{}]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{subs: make(map[chan struct{}]struct{})}
}

// LoadMenu installs a freshly fetched menu snapshot. The admin collection
// keeps every item; the customer collection keeps only available ones.
func (s *Store) LoadMenu(items []domain.MenuItem) {
	s.mu.Lock()
	s.adminMenu = make([]domain.MenuItem, len(items))
	copy(s.adminMenu, items)
	s.menu = s.menu[:0:0]
	for _, it := range items {
		if it.Available {
			s.menu = append(s.menu, it)
		}
	}
	s.mu.Unlock()
	s.notify()
}

// LoadOrders installs a freshly fetched order snapshot.
func (s *Store) LoadOrders(orders []domain.Order) {
	s.mu.Lock()
	s.orders = make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		s.orders = append(s.orders, o.Clone())
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyMenuEvent runs one menu event through both menu reducers.
func (s *Store) ApplyMenuEvent(ev domain.MenuEvent) {
	s.mu.Lock()
	s.menu = domain.ReduceMenu(s.menu, ev)
	s.adminMenu = domain.ReduceMenuAdmin(s.adminMenu, ev)
	s.mu.Unlock()
	s.notify()
}

// ApplyOrderEvent runs one order event through the order reducer.
func (s *Store) ApplyOrderEvent(ev domain.OrderEvent) {
	s.mu.Lock()
	s.orders = domain.ReduceOrders(s.orders, ev)
	s.mu.Unlock()
	s.notify()
}

// MenuSnapshot returns a copy of the customer-facing menu.
func (s *Store) MenuSnapshot() []domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.MenuItem, len(s.menu))
	copy(out, s.menu)
	return out
}

// AdminMenuSnapshot returns a copy of the admin-facing menu.
func (s *Store) AdminMenuSnapshot() []domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.MenuItem, len(s.adminMenu))
	copy(out, s.adminMenu)
	return out
}

// OrdersSnapshot returns a deep copy of the order collection.
func (s *Store) OrdersSnapshot() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out
}

// Stats recomputes the derived analytics from the current order collection.
func (s *Store) Stats() domain.Stats {
	return domain.ComputeStats(s.OrdersSnapshot())
}

// Subscribe registers a change-notification channel. The channel carries at
// most one pending tick; coalesced notifications are fine because readers
// re-snapshot on every tick.
func (s *Store) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes a change-notification channel.
func (s *Store) Unsubscribe(ch chan struct{}) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

// Close marks the store torn down. In-flight mutation resolutions observe
// this through Alive and discard their result instead of applying it.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.subs = make(map[chan struct{}]struct{})
	s.mu.Unlock()
}

// Alive reports whether the store is still mounted.
func (s *Store) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Entity-level operations used by the optimistic mutation controller. They
// run under the same mutex as event application, so a speculative edit and
// its later resolution are each atomic with respect to interleaved feed
// events.

func (s *Store) insertMenuItem(item domain.MenuItem) {
	s.mu.Lock()
	if item.Available {
		s.menu = append(s.menu, item)
	}
	s.adminMenu = append(s.adminMenu, item)
	s.mu.Unlock()
	s.notify()
}

// replaceMenuItem swaps the entry matching oldID for item, deduplicating
// against an entry that already carries item's authoritative ID (the live
// feed may have delivered the created event before the call resolved).
func (s *Store) replaceMenuItem(oldID string, item domain.MenuItem) {
	s.mu.Lock()
	s.menu = replaceOrRemove(s.menu, oldID, item, item.Available)
	s.adminMenu = replaceOrRemove(s.adminMenu, oldID, item, true)
	s.mu.Unlock()
	s.notify()
}

func replaceOrRemove(items []domain.MenuItem, oldID string, item domain.MenuItem, keep bool) []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(items))
	replaced := false
	for _, it := range items {
		switch {
		case it.ID == oldID:
			if keep && !replaced {
				out = append(out, item)
				replaced = true
			}
		case it.ID == item.ID:
			if keep && !replaced {
				out = append(out, item)
				replaced = true
			}
		default:
			out = append(out, it)
		}
	}
	if keep && !replaced {
		out = append(out, item)
	}
	return out
}

func (s *Store) removeMenuItem(id string) {
	s.mu.Lock()
	s.menu = deleteMenuItem(s.menu, id)
	s.adminMenu = deleteMenuItem(s.adminMenu, id)
	s.mu.Unlock()
	s.notify()
}

func deleteMenuItem(items []domain.MenuItem, id string) []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// menuItem returns the admin-collection entry for id, which covers currently
// unavailable items as well.
func (s *Store) menuItem(id string) (domain.MenuItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.adminMenu {
		if it.ID == id {
			return it, true
		}
	}
	return domain.MenuItem{}, false
}

// restoreMenuItem puts the captured pre-mutation value back for exactly one
// entity: re-inserted at the end if it disappeared meanwhile, replaced in
// place otherwise, removed when the snapshot says it did not exist.
func (s *Store) restoreMenuItem(id string, prev domain.MenuItem, existed bool) {
	s.mu.Lock()
	if !existed {
		s.menu = deleteMenuItem(s.menu, id)
		s.adminMenu = deleteMenuItem(s.adminMenu, id)
	} else {
		s.adminMenu = putMenuItem(s.adminMenu, id, prev, true)
		s.menu = putMenuItem(s.menu, id, prev, prev.Available)
	}
	s.mu.Unlock()
	s.notify()
}

func putMenuItem(items []domain.MenuItem, id string, item domain.MenuItem, keep bool) []domain.MenuItem {
	idx := -1
	for i, it := range items {
		if it.ID == id {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && keep:
		return append(items, item)
	case idx >= 0 && keep:
		out := make([]domain.MenuItem, len(items))
		copy(out, items)
		out[idx] = item
		return out
	case idx >= 0:
		return deleteMenuItem(items, id)
	default:
		return items
	}
}

func (s *Store) order(id string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return domain.Order{}, false
}

func (s *Store) setOrderStatus(id string, status domain.Status) {
	s.mu.Lock()
	for i, o := range s.orders {
		if o.ID == id {
			s.orders[i].Status = status
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) restoreOrder(id string, prev domain.Order, existed bool) {
	s.mu.Lock()
	idx := -1
	for i, o := range s.orders {
		if o.ID == id {
			idx = i
			break
		}
	}
	switch {
	case idx >= 0 && existed:
		s.orders[idx] = prev.Clone()
	case idx < 0 && existed:
		s.orders = append(s.orders, prev.Clone())
	case idx >= 0:
		s.orders = append(s.orders[:idx:idx], s.orders[idx+1:]...)
	}
	s.mu.Unlock()
	s.notify()
}
