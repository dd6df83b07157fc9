package state

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Kush-Patel15/KDS-system/domain"
)

// RemoteAPI is the slice of the backend client the mutation controller
// issues calls through.
type RemoteAPI interface {
	CreateMenuItem(ctx context.Context, draft domain.MenuItem) (domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, item domain.MenuItem) (domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
	UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error)
}

// Mutator wraps locally initiated edits in the optimistic pattern: apply a
// speculative change to the store synchronously, issue the remote call, then
// reconcile the speculative entry with the authoritative response or roll it
// back. Rollback restores only the captured entity; live-feed events that
// interleaved with the call stay applied. Failed mutations are surfaced to
// the caller and never retried here.
type Mutator struct {
	store *Store
	api   RemoteAPI
	ids   *TempIDSource
	flow  domain.Flow
}

// NewMutator creates a mutation controller bound to a store and backend.
func NewMutator(store *Store, api RemoteAPI, ids *TempIDSource, flow domain.Flow) *Mutator {
	return &Mutator{store: store, api: api, ids: ids, flow: flow}
}

// CreateMenuItem inserts a placeholder entry with a temporary identifier,
// creates the item remotely, and swaps the placeholder for the authoritative
// record, matched by the temporary identifier, so no duplicate and no
// dangling placeholder survive the exchange.
func (m *Mutator) CreateMenuItem(ctx context.Context, draft domain.MenuItem) (domain.MenuItem, error) {
	alive := m.store.Alive()
	tempID := m.ids.Next()
	placeholder := draft
	placeholder.ID = tempID
	if placeholder.ImageURL == "" {
		placeholder.ImageURL = domain.PlaceholderImage
	}
	if alive {
		m.store.insertMenuItem(placeholder)
	}

	saved, err := m.api.CreateMenuItem(ctx, draft)
	if !m.store.Alive() {
		// The state owner was torn down mid-flight; nothing to reconcile.
		return saved, err
	}
	if err != nil {
		if alive {
			m.store.restoreMenuItem(tempID, domain.MenuItem{}, false)
		}
		return domain.MenuItem{}, fmt.Errorf("create menu item: %w", err)
	}
	m.store.replaceMenuItem(tempID, saved)
	return saved, nil
}

// UpdateMenuItem merges the edited fields in place, updates remotely and
// replaces the speculative merge with the authoritative record. On failure
// the captured pre-mutation value is restored exactly.
func (m *Mutator) UpdateMenuItem(ctx context.Context, id string, item domain.MenuItem) (domain.MenuItem, error) {
	prev, existed := m.store.menuItem(id)
	item.ID = id
	if m.store.Alive() {
		m.store.replaceMenuItem(id, item)
	}

	saved, err := m.api.UpdateMenuItem(ctx, id, item)
	if !m.store.Alive() {
		return saved, err
	}
	if err != nil {
		m.store.restoreMenuItem(id, prev, existed)
		return domain.MenuItem{}, fmt.Errorf("update menu item %s: %w", id, err)
	}
	if saved.ID != "" {
		m.store.replaceMenuItem(id, saved)
		return saved, nil
	}
	// Response without a body: the speculative merge stands.
	return item, nil
}

// ToggleFlag flips the availability or popularity flag of one item.
func (m *Mutator) ToggleFlag(ctx context.Context, id, field string) (domain.MenuItem, error) {
	prev, existed := m.store.menuItem(id)
	if !existed {
		return domain.MenuItem{}, fmt.Errorf("toggle %s: no menu item %s", field, id)
	}
	updated := prev
	switch field {
	case "isAvailable":
		updated.Available = !updated.Available
	case "isPopular":
		updated.Popular = !updated.Popular
	default:
		return domain.MenuItem{}, fmt.Errorf("toggle: unknown flag %q", field)
	}
	return m.UpdateMenuItem(ctx, id, updated)
}

// DeleteMenuItem removes the item immediately and confirms remotely; a
// failed delete re-inserts the captured value.
func (m *Mutator) DeleteMenuItem(ctx context.Context, id string) error {
	prev, existed := m.store.menuItem(id)
	if m.store.Alive() {
		m.store.removeMenuItem(id)
	}

	err := m.api.DeleteMenuItem(ctx, id)
	if !m.store.Alive() {
		return err
	}
	if err != nil {
		m.store.restoreMenuItem(id, prev, existed)
		return fmt.Errorf("delete menu item %s: %w", id, err)
	}
	return nil
}

// AdvanceOrder moves an order one step forward in the lifecycle flow. At the
// terminal state it is a no-op returning the order unchanged. The optimistic
// status is confirmed or rejected by the backend; the response is the source
// of truth for the exact status and completion timestamp.
func (m *Mutator) AdvanceOrder(ctx context.Context, id string) (domain.Order, error) {
	prev, existed := m.store.order(id)
	if !existed {
		return domain.Order{}, fmt.Errorf("advance: no order %s", id)
	}
	next, ok := m.flow.Next(prev.Status)
	if !ok {
		return prev, nil
	}
	if m.store.Alive() {
		m.store.setOrderStatus(id, next)
	}

	saved, err := m.api.UpdateOrderStatus(ctx, id, next)
	if !m.store.Alive() {
		return saved, err
	}
	if err != nil {
		m.store.restoreOrder(id, prev, true)
		return domain.Order{}, fmt.Errorf("advance order %s: %w", id, err)
	}
	status := saved.Status
	if status == "" {
		status = next
	}
	ev := domain.OrderEvent{Type: domain.EventStatus, ID: id, Status: status, CompletedAt: saved.CompletedAt}
	m.store.ApplyOrderEvent(ev)
	log.WithFields(log.Fields{"order": id, "status": status}).Debug("order advanced")
	return saved, nil
}
