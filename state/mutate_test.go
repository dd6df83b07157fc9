package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kush-Patel15/KDS-system/domain"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend scripts remote call outcomes and lets a test interleave feed
// events between the speculative local change and the call resolving.
type fakeBackend struct {
	fail      bool
	savedItem domain.MenuItem
	savedOrd  domain.Order

	// beforeResolve runs while the remote call is "in flight".
	beforeResolve func()

	lastStatus domain.Status
}

func (f *fakeBackend) resolve() error {
	if f.beforeResolve != nil {
		f.beforeResolve()
	}
	if f.fail {
		return errBackend
	}
	return nil
}

func (f *fakeBackend) CreateMenuItem(ctx context.Context, draft domain.MenuItem) (domain.MenuItem, error) {
	if err := f.resolve(); err != nil {
		return domain.MenuItem{}, err
	}
	return f.savedItem, nil
}

func (f *fakeBackend) UpdateMenuItem(ctx context.Context, id string, item domain.MenuItem) (domain.MenuItem, error) {
	if err := f.resolve(); err != nil {
		return domain.MenuItem{}, err
	}
	return f.savedItem, nil
}

func (f *fakeBackend) DeleteMenuItem(ctx context.Context, id string) error {
	return f.resolve()
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	f.lastStatus = status
	if err := f.resolve(); err != nil {
		return domain.Order{}, err
	}
	return f.savedOrd, nil
}

func newMutatorUnderTest(backend *fakeBackend) (*Mutator, *Store) {
	store := NewStore()
	return NewMutator(store, backend, NewTempIDSource(), domain.KitchenFlow), store
}

func adminItem(t *testing.T, s *Store, id string) domain.MenuItem {
	t.Helper()
	for _, it := range s.AdminMenuSnapshot() {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("no menu item %s in admin view", id)
	return domain.MenuItem{}
}

func TestCreateMenuItemSwapsPlaceholder(t *testing.T) {
	backend := &fakeBackend{savedItem: domain.MenuItem{ID: "501", Name: "Taco", Price: 8, Available: true}}
	m, store := newMutatorUnderTest(backend)

	var placeholderID string
	backend.beforeResolve = func() {
		menu := store.MenuSnapshot()
		if len(menu) != 1 || !IsTempID(menu[0].ID) {
			t.Errorf("expected one placeholder entry in flight, got %+v", menu)
			return
		}
		placeholderID = menu[0].ID
	}

	saved, err := m.CreateMenuItem(context.Background(), domain.MenuItem{Name: "Taco", Price: 8, Available: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if saved.ID != "501" {
		t.Fatalf("saved.ID = %s, want 501", saved.ID)
	}

	menu := store.MenuSnapshot()
	if len(menu) != 1 || menu[0].ID != "501" {
		t.Fatalf("menu after swap = %+v, want only the authoritative record", menu)
	}
	for _, it := range menu {
		if it.ID == placeholderID {
			t.Fatal("placeholder survived the swap")
		}
	}
}

func TestCreateMenuItemFailureRemovesPlaceholder(t *testing.T) {
	backend := &fakeBackend{fail: true}
	m, store := newMutatorUnderTest(backend)

	_, err := m.CreateMenuItem(context.Background(), domain.MenuItem{Name: "Taco", Available: true})
	if !errors.Is(err, errBackend) {
		t.Fatalf("err = %v, want wrapped backend error", err)
	}
	if menu := store.MenuSnapshot(); len(menu) != 0 {
		t.Fatalf("menu = %+v, want the placeholder rolled back", menu)
	}
	if admin := store.AdminMenuSnapshot(); len(admin) != 0 {
		t.Fatalf("admin menu = %+v, want empty", admin)
	}
}

func TestCreateMenuItemFeedEventBeforeResolve(t *testing.T) {
	// The live feed delivers the created event before the HTTP call returns.
	// The swap must dedupe: one entry, authoritative, no placeholder.
	authoritative := domain.MenuItem{ID: "501", Name: "Taco", Price: 8, Available: true}
	backend := &fakeBackend{savedItem: authoritative}
	m, store := newMutatorUnderTest(backend)
	backend.beforeResolve = func() {
		item := authoritative
		store.ApplyMenuEvent(domain.MenuEvent{Type: domain.EventCreated, Item: &item})
	}

	if _, err := m.CreateMenuItem(context.Background(), domain.MenuItem{Name: "Taco", Price: 8, Available: true}); err != nil {
		t.Fatalf("create: %v", err)
	}

	menu := store.MenuSnapshot()
	if len(menu) != 1 || menu[0].ID != "501" {
		t.Fatalf("menu = %+v, want exactly one authoritative entry", menu)
	}
}

func TestUpdateMenuItemFailureRestoresExactValue(t *testing.T) {
	backend := &fakeBackend{fail: true}
	m, store := newMutatorUnderTest(backend)
	store.LoadMenu([]domain.MenuItem{{ID: "1", Name: "Burger", Price: 11, Available: true}})

	_, err := m.UpdateMenuItem(context.Background(), "1", domain.MenuItem{Name: "Burger", Price: 13, Available: true})
	if !errors.Is(err, errBackend) {
		t.Fatalf("err = %v", err)
	}

	got := adminItem(t, store, "1")
	if got.Price != 11 {
		t.Fatalf("price = %v after rollback, want 11", got.Price)
	}
}

func TestUpdateMenuItemRollbackKeepsInterleavedEvents(t *testing.T) {
	// A rollback restores exactly the one entity it captured; a feed event
	// for a different entity that landed mid-flight must survive it.
	backend := &fakeBackend{fail: true}
	m, store := newMutatorUnderTest(backend)
	store.LoadMenu([]domain.MenuItem{{ID: "1", Name: "Burger", Price: 11, Available: true}})
	backend.beforeResolve = func() {
		fries := domain.MenuItem{ID: "2", Name: "Fries", Price: 4, Available: true}
		store.ApplyMenuEvent(domain.MenuEvent{Type: domain.EventCreated, Item: &fries})
	}

	if _, err := m.UpdateMenuItem(context.Background(), "1", domain.MenuItem{Name: "Burger", Price: 13, Available: true}); err == nil {
		t.Fatal("expected update to fail")
	}

	menu := store.MenuSnapshot()
	if len(menu) != 2 {
		t.Fatalf("menu = %+v, want rollback target plus interleaved create", menu)
	}
	if got := adminItem(t, store, "1"); got.Price != 11 {
		t.Fatalf("price = %v, want pre-mutation value", got.Price)
	}
	if got := adminItem(t, store, "2"); got.Name != "Fries" {
		t.Fatalf("interleaved create lost: %+v", got)
	}
}

func TestToggleFlagDivergesViews(t *testing.T) {
	backend := &fakeBackend{savedItem: domain.MenuItem{ID: "1", Name: "Burger", Price: 11, Available: false}}
	m, store := newMutatorUnderTest(backend)
	store.LoadMenu([]domain.MenuItem{{ID: "1", Name: "Burger", Price: 11, Available: true}})

	if _, err := m.ToggleFlag(context.Background(), "1", "isAvailable"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if menu := store.MenuSnapshot(); len(menu) != 0 {
		t.Fatalf("customer menu = %+v, want the unavailable item hidden", menu)
	}
	got := adminItem(t, store, "1")
	if got.Available {
		t.Fatal("admin view should show the item as unavailable")
	}
}

func TestToggleFlagUnknownField(t *testing.T) {
	m, store := newMutatorUnderTest(&fakeBackend{})
	store.LoadMenu([]domain.MenuItem{{ID: "1", Name: "Burger", Available: true}})

	if _, err := m.ToggleFlag(context.Background(), "1", "isSpicy"); err == nil {
		t.Fatal("expected unknown-flag error")
	}
}

func TestDeleteMenuItemFailureReinserts(t *testing.T) {
	backend := &fakeBackend{fail: true}
	m, store := newMutatorUnderTest(backend)
	store.LoadMenu([]domain.MenuItem{{ID: "1", Name: "Burger", Available: true}})
	backend.beforeResolve = func() {
		if got := len(store.MenuSnapshot()); got != 0 {
			t.Errorf("item still visible mid-flight: %d entries", got)
		}
	}

	if err := m.DeleteMenuItem(context.Background(), "1"); !errors.Is(err, errBackend) {
		t.Fatalf("err = %v", err)
	}
	if got := adminItem(t, store, "1"); got.Name != "Burger" {
		t.Fatalf("item not reinserted: %+v", got)
	}
}

func TestAdvanceOrderOptimisticThenAuthoritative(t *testing.T) {
	backend := &fakeBackend{savedOrd: domain.Order{ID: "o1", Status: domain.StatusPreparing}}
	m, store := newMutatorUnderTest(backend)
	store.LoadOrders([]domain.Order{{ID: "o1", Status: domain.StatusReceived}})
	backend.beforeResolve = func() {
		orders := store.OrdersSnapshot()
		if orders[0].Status != domain.StatusPreparing {
			t.Errorf("status mid-flight = %s, want optimistic preparing", orders[0].Status)
		}
	}

	saved, err := m.AdvanceOrder(context.Background(), "o1")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if saved.Status != domain.StatusPreparing {
		t.Fatalf("saved.Status = %s", saved.Status)
	}
	if backend.lastStatus != domain.StatusPreparing {
		t.Fatalf("requested status = %s, want preparing", backend.lastStatus)
	}
}

func TestAdvanceOrderTerminalNoOp(t *testing.T) {
	backend := &fakeBackend{}
	m, store := newMutatorUnderTest(backend)
	store.LoadOrders([]domain.Order{{ID: "o1", Status: domain.StatusReady}})

	order, err := m.AdvanceOrder(context.Background(), "o1")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if order.Status != domain.StatusReady {
		t.Fatalf("status = %s, want unchanged ready", order.Status)
	}
	if backend.lastStatus != "" {
		t.Fatal("terminal advance must not call the backend")
	}
}

func TestAdvanceOrderFailureRevertsStatus(t *testing.T) {
	backend := &fakeBackend{fail: true}
	m, store := newMutatorUnderTest(backend)
	store.LoadOrders([]domain.Order{{ID: "o1", Status: domain.StatusPlating}})

	if _, err := m.AdvanceOrder(context.Background(), "o1"); !errors.Is(err, errBackend) {
		t.Fatalf("err = %v", err)
	}
	orders := store.OrdersSnapshot()
	if orders[0].Status != domain.StatusPlating {
		t.Fatalf("status = %s after rollback, want plating", orders[0].Status)
	}
}

func TestAdvanceOrderCompletionTimestampFromBackend(t *testing.T) {
	done := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	backend := &fakeBackend{savedOrd: domain.Order{ID: "o1", Status: domain.StatusReady, CompletedAt: done}}
	m, store := newMutatorUnderTest(backend)
	store.LoadOrders([]domain.Order{{ID: "o1", Status: domain.StatusPlating}})

	if _, err := m.AdvanceOrder(context.Background(), "o1"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	orders := store.OrdersSnapshot()
	if orders[0].Status != domain.StatusReady {
		t.Fatalf("status = %s, want ready", orders[0].Status)
	}
	if !orders[0].CompletedAt.Equal(done) {
		t.Fatalf("completedAt = %v, want backend timestamp", orders[0].CompletedAt)
	}
}

func TestMutationResolutionAfterClose(t *testing.T) {
	backend := &fakeBackend{savedItem: domain.MenuItem{ID: "501", Name: "Taco", Available: true}}
	m, store := newMutatorUnderTest(backend)
	backend.beforeResolve = func() { store.Close() }

	if _, err := m.CreateMenuItem(context.Background(), domain.MenuItem{Name: "Taco", Available: true}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// The resolution landed after teardown, so the swap was discarded; the
	// collection still holds only the pre-teardown placeholder.
	menu := store.AdminMenuSnapshot()
	if len(menu) != 1 || !IsTempID(menu[0].ID) {
		t.Fatalf("menu = %+v, want the untouched placeholder", menu)
	}
}
