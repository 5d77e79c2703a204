package tickets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventra/globals"
	"eventra/structs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	mu     sync.Mutex
	events map[string]*structs.Event

	// decrementHook runs before a decrement is applied, letting tests
	// simulate a concurrent purchaser between check and execution.
	decrementHook func(inv *fakeInventory, categoryName string)
}

func newFakeInventory(events ...*structs.Event) *fakeInventory {
	inv := &fakeInventory{events: map[string]*structs.Event{}}
	for _, event := range events {
		inv.events[event.EventID] = event
	}
	return inv
}

func (inv *fakeInventory) FindEvent(_ context.Context, eventID string) (*structs.Event, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	event, ok := inv.events[eventID]
	if !ok {
		return nil, nil
	}
	snapshot := *event
	snapshot.Tickets = append([]structs.TicketCategory(nil), event.Tickets...)
	return &snapshot, nil
}

func (inv *fakeInventory) DecrementRemaining(_ context.Context, eventID, categoryName string, qty int) (bool, error) {
	if inv.decrementHook != nil {
		inv.decrementHook(inv, categoryName)
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	event, ok := inv.events[eventID]
	if !ok {
		return false, nil
	}
	for i := range event.Tickets {
		if event.Tickets[i].CategoryName == categoryName {
			if event.Tickets[i].RemainingTickets < qty {
				return false, nil
			}
			event.Tickets[i].RemainingTickets -= qty
			return true, nil
		}
	}
	return false, nil
}

func (inv *fakeInventory) IncrementRemaining(_ context.Context, eventID, categoryName string, qty int) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	event, ok := inv.events[eventID]
	if !ok {
		return errors.New("event not found")
	}
	for i := range event.Tickets {
		if event.Tickets[i].CategoryName == categoryName {
			event.Tickets[i].RemainingTickets += qty
			return nil
		}
	}
	return errors.New("category not found")
}

func (inv *fakeInventory) remaining(eventID, categoryName string) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, cat := range inv.events[eventID].Tickets {
		if cat.CategoryName == categoryName {
			return cat.RemainingTickets
		}
	}
	return -1
}

func (inv *fakeInventory) drain(eventID, categoryName string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for i := range inv.events[eventID].Tickets {
		if inv.events[eventID].Tickets[i].CategoryName == categoryName {
			inv.events[eventID].Tickets[i].RemainingTickets = 0
		}
	}
}

type fakeLedger struct {
	mu        sync.Mutex
	rows      []structs.TicketPurchase
	insertErr error
}

func (l *fakeLedger) Insert(_ context.Context, purchase structs.TicketPurchase) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.insertErr != nil {
		return l.insertErr
	}
	l.rows = append(l.rows, purchase)
	return nil
}

func (l *fakeLedger) FindByID(_ context.Context, purchaseID, userID string) (*structs.TicketPurchase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.rows {
		if l.rows[i].PurchaseID == purchaseID && l.rows[i].UserID == userID {
			row := l.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (l *fakeLedger) List(_ context.Context, userID, status string, _, _ int64) ([]structs.TicketPurchase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []structs.TicketPurchase
	for _, row := range l.rows {
		if row.UserID == userID && (status == "" || row.Status == status) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (l *fakeLedger) Count(_ context.Context, userID, status string) (int64, error) {
	rows, _ := l.List(context.Background(), userID, status, 0, 0)
	return int64(len(rows)), nil
}

func (l *fakeLedger) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var modified int64
	for i := range l.rows {
		if l.rows[i].Status == globals.PurchaseActive && l.rows[i].EventEndDate.Before(now) {
			l.rows[i].Status = globals.PurchaseDone
			modified++
		}
	}
	return modified, nil
}

func (l *fakeLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

func testEvent(categories ...structs.TicketCategory) *structs.Event {
	return &structs.Event{
		EventID:   "ev1",
		OwnerID:   "org1",
		Title:     "Summer Fest",
		SubTitle:  "Open air",
		Location:  "Riverside Park",
		StartDate: time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 1, 23, 0, 0, 0, time.UTC),
		Tickets:   categories,
	}
}

func TestBuyTicketsSuccess(t *testing.T) {
	inv := newFakeInventory(testEvent(
		structs.TicketCategory{CategoryName: "VIP", TotalTickets: 2, RemainingTickets: 2, Price: 100.00},
	))
	ledger := &fakeLedger{}
	svc := &PurchaseService{Inventory: inv, Ledger: ledger}

	purchase, err := svc.BuyTickets(context.Background(), "user1", "ev1", []Line{
		{CategoryName: "VIP", TotalTickets: 2},
	})
	require.NoError(t, err)
	require.NotNil(t, purchase)

	assert.Equal(t, "user1", purchase.UserID)
	assert.Equal(t, "ev1", purchase.EventID)
	assert.Equal(t, "Summer Fest", purchase.EventTitle)
	assert.Equal(t, "Riverside Park", purchase.EventLocation)
	assert.Equal(t, globals.PurchaseActive, purchase.Status)
	assert.NotEmpty(t, purchase.PurchaseID)
	require.Len(t, purchase.Category, 1)
	assert.Equal(t, "VIP", purchase.Category[0].CategoryName)
	assert.Equal(t, 2, purchase.Category[0].TotalTickets)
	assert.Equal(t, 200.00, purchase.Category[0].TotalPrice)

	assert.Equal(t, 0, inv.remaining("ev1", "VIP"))
	assert.Equal(t, 1, ledger.count())

	// Sold out now: an identical second request fails and creates no row.
	_, err = svc.BuyTickets(context.Background(), "user1", "ev1", []Line{
		{CategoryName: "VIP", TotalTickets: 2},
	})
	var insufficient *InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "VIP", insufficient.Name)
	assert.Equal(t, 1, ledger.count())
	assert.Equal(t, 0, inv.remaining("ev1", "VIP"))
}

func TestBuyTicketsFractionalPrices(t *testing.T) {
	inv := newFakeInventory(testEvent(
		structs.TicketCategory{CategoryName: "Early Bird", TotalTickets: 100, RemainingTickets: 100, Price: 19.99},
	))
	ledger := &fakeLedger{}
	svc := &PurchaseService{Inventory: inv, Ledger: ledger}

	purchase, err := svc.BuyTickets(context.Background(), "user1", "ev1", []Line{
		{CategoryName: "Early Bird", TotalTickets: 3},
	})
	require.NoError(t, err)
	// 3 x 19.99 must not pick up float drift.
	assert.Equal(t, 59.97, purchase.Category[0].TotalPrice)
}

func TestBuyTicketsEventNotFound(t *testing.T) {
	svc := &PurchaseService{Inventory: newFakeInventory(), Ledger: &fakeLedger{}}

	_, err := svc.BuyTickets(context.Background(), "user1", "missing", []Line{
		{CategoryName: "VIP", TotalTickets: 1},
	})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestBuyTicketsCategoryNotFound(t *testing.T) {
	inv := newFakeInventory(testEvent(
		structs.TicketCategory{CategoryName: "VIP", TotalTickets: 5, RemainingTickets: 5, Price: 100},
	))
	ledger := &fakeLedger{}
	svc := &PurchaseService{Inventory: inv, Ledger: ledger}

	_, err := svc.BuyTickets(context.Background(), "user1", "ev1", []Line{
		{CategoryName: "Balcony", TotalTickets: 1},
	})
	var notFound *CategoryNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Balcony", notFound.Name)
	assert.Equal(t, 5, inv.remaining("ev1", "VIP"))
	assert.Equal(t, 0, ledger.count())
}

func TestBuyTicketsInsufficientAtCheck(t *testing.T) {
	inv := newFakeInventory(testEvent(
		structs.TicketCategory{CategoryName: "VIP", TotalTickets: 5, RemainingTickets: 2, Price: 100},
	))
	ledger := &fakeLedger{}
	svc := &PurchaseService{Inventory: inv, Ledger: ledger}

	_, err := svc.BuyTickets(context.Background(), "user1", "ev1", []Line{
		{CategoryName: "VIP", TotalTickets: 3},
	})
	var insufficient *InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, inv.remaining("ev1", "VIP"))
	assert.Equal(t, 0, ledger.count())
}

func TestBuyTicketsCompensatesEarlierLines(t *testing.T) {
	inv := newFakeInventory(testEvent(
		structs.TicketCategory{CategoryName: "A", TotalTickets: 5, RemainingTickets: 5, Price: 50},
		structs.TicketCategory{CategoryName: "B", TotalTickets: 5, RemainingTickets: 1, Price: 80},
	))
	// A concurrent purchaser drains B after this request's availability
	// check but before B's decrement executes.
	drained := false
	inv.decrementHook = func(inv *fakeInventory, categoryName string) {
		if categoryName == "B" && !drained {
			drained = true
			inv.drain("ev1", "B")
		}
	}
	ledger := &fakeLedger{}
	svc := &PurchaseService{Inventory: inv, Ledger: ledger}

	_, err := svc.BuyTickets(context.Background(), "user1", "ev1", []Line{
		{CategoryName: "A", TotalTickets: 3},
		{CategoryName: "B", TotalTickets: 1},
	})
	var insufficient *InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "B", insufficient.Name)

	// A's decrement was rolled back, no ledger row exists.
	assert.Equal(t, 5, inv.remaining("ev1", "A"))
	assert.Equal(t, 0, inv.remaining("ev1", "B"))
	assert.Equal(t, 0, ledger.count())
}

func TestBuyTicketsRollsBackOnLedgerFailure(t *testing.T) {
	inv := newFakeInventory(testEvent(
		structs.TicketCategory{CategoryName: "VIP", TotalTickets: 5, RemainingTickets: 5, Price: 100},
	))
	ledger := &fakeLedger{insertErr: errors.New("write failed")}
	svc := &PurchaseService{Inventory: inv, Ledger: ledger}

	_, err := svc.BuyTickets(context.Background(), "user1", "ev1", []Line{
		{CategoryName: "VIP", TotalTickets: 2},
	})
	require.Error(t, err)
	assert.Equal(t, 5, inv.remaining("ev1", "VIP"))
	assert.Equal(t, 0, ledger.count())
}

func TestBuyTicketsConcurrentNoOversell(t *testing.T) {
	const available = 5
	const buyers = 20

	inv := newFakeInventory(testEvent(
		structs.TicketCategory{CategoryName: "GA", TotalTickets: available, RemainingTickets: available, Price: 25.50},
	))
	ledger := &fakeLedger{}
	svc := &PurchaseService{Inventory: inv, Ledger: ledger}

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.BuyTickets(context.Background(), "user1", "ev1", []Line{
				{CategoryName: "GA", TotalTickets: 1},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			var insufficient *InsufficientInventoryError
			assert.ErrorAs(t, err, &insufficient)
		}
	}
	assert.Equal(t, available, succeeded)
	assert.Equal(t, available, ledger.count())
	assert.Equal(t, 0, inv.remaining("ev1", "GA"))
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{rows: []structs.TicketPurchase{
		{PurchaseID: "p1", UserID: "u1", Status: globals.PurchaseActive, EventEndDate: now.Add(-time.Hour)},
		{PurchaseID: "p2", UserID: "u1", Status: globals.PurchaseActive, EventEndDate: now.Add(time.Hour)},
		{PurchaseID: "p3", UserID: "u1", Status: globals.PurchaseDone, EventEndDate: now.Add(-48 * time.Hour)},
	}}

	modified, err := ledger.SweepExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), modified)

	first := append([]structs.TicketPurchase(nil), ledger.rows...)

	// A second run changes nothing.
	modified, err = ledger.SweepExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), modified)
	assert.Equal(t, first, ledger.rows)

	assert.Equal(t, globals.PurchaseDone, ledger.rows[0].Status)
	assert.Equal(t, globals.PurchaseActive, ledger.rows[1].Status)
}

func TestValidateLines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []Line
		wantMsg bool
	}{
		{"valid single line", []Line{{CategoryName: "VIP", TotalTickets: 1}}, false},
		{"valid multi line", []Line{{CategoryName: "VIP", TotalTickets: 2}, {CategoryName: "GA", TotalTickets: 4}}, false},
		{"empty request", nil, true},
		{"missing name", []Line{{CategoryName: "", TotalTickets: 1}}, true},
		{"zero quantity", []Line{{CategoryName: "VIP", TotalTickets: 0}}, true},
		{"negative quantity", []Line{{CategoryName: "VIP", TotalTickets: -2}}, true},
		{"duplicate category", []Line{{CategoryName: "VIP", TotalTickets: 1}, {CategoryName: "VIP", TotalTickets: 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ValidateLines(tt.lines)
			if tt.wantMsg {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}
