package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventra/globals"
	"eventra/logger"
	"eventra/structs"
	"eventra/utils"

	"github.com/shopspring/decimal"
)

var ErrEventNotFound = errors.New("event not found")

type CategoryNotFoundError struct {
	Name string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("Category %q not found", e.Name)
}

type InsufficientInventoryError struct {
	Name string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("Insufficient tickets available for category %q", e.Name)
}

// Line is one requested category/quantity pair of a purchase.
type Line struct {
	CategoryName string `json:"categoryName"`
	TotalTickets int    `json:"totalTickets"`
}

// InventoryStore is the event inventory as the purchase path sees it.
// DecrementRemaining must be a single atomic compare-and-decrement:
// it decrements the category's remaining count only while
// remaining >= qty holds, and reports whether it applied.
type InventoryStore interface {
	FindEvent(ctx context.Context, eventID string) (*structs.Event, error)
	DecrementRemaining(ctx context.Context, eventID, categoryName string, qty int) (bool, error)
	IncrementRemaining(ctx context.Context, eventID, categoryName string, qty int) error
}

// LedgerStore is the append-only ticket purchase ledger.
type LedgerStore interface {
	Insert(ctx context.Context, purchase structs.TicketPurchase) error
	FindByID(ctx context.Context, purchaseID, userID string) (*structs.TicketPurchase, error)
	List(ctx context.Context, userID, status string, skip, limit int64) ([]structs.TicketPurchase, error)
	Count(ctx context.Context, userID, status string) (int64, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type PurchaseService struct {
	Inventory InventoryStore
	Ledger    LedgerStore
}

// BuyTickets converts a purchase request into guarded per-category
// decrements plus one ledger row. The store is only atomic per
// document, so a guard lost mid-request is undone by compensating
// increments of the lines already applied; the caller never observes
// a decrement without either a ledger row or a full rollback.
//
// Not idempotent: two identical requests are two purchases.
func (svc *PurchaseService) BuyTickets(ctx context.Context, userID, eventID string, lines []Line) (*structs.TicketPurchase, error) {
	event, err := svc.Inventory.FindEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	// Preconditions before any write. The availability check here is
	// advisory: the guard on each decrement is what prevents oversell.
	byName := make(map[string]structs.TicketCategory, len(event.Tickets))
	for _, cat := range event.Tickets {
		byName[cat.CategoryName] = cat
	}
	for _, line := range lines {
		cat, ok := byName[line.CategoryName]
		if !ok {
			return nil, &CategoryNotFoundError{Name: line.CategoryName}
		}
		if line.TotalTickets > cat.RemainingTickets {
			return nil, &InsufficientInventoryError{Name: line.CategoryName}
		}
	}

	applied := make([]Line, 0, len(lines))
	for _, line := range lines {
		ok, err := svc.Inventory.DecrementRemaining(ctx, eventID, line.CategoryName, line.TotalTickets)
		if err != nil {
			svc.rollback(ctx, eventID, applied)
			return nil, err
		}
		if !ok {
			// Someone else consumed the remaining inventory between the
			// precondition check and this line.
			svc.rollback(ctx, eventID, applied)
			return nil, &InsufficientInventoryError{Name: line.CategoryName}
		}
		applied = append(applied, line)
	}

	now := time.Now()
	purchase := structs.TicketPurchase{
		PurchaseID:     utils.GenerateID(14),
		UserID:         userID,
		EventID:        event.EventID,
		EventTitle:     event.Title,
		EventSubTitle:  event.SubTitle,
		EventLocation:  event.Location,
		EventStartDate: event.StartDate,
		EventEndDate:   event.EndDate,
		Category:       make([]structs.PurchaseLine, len(lines)),
		Status:         globals.PurchaseActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i, line := range lines {
		total := decimal.NewFromFloat(byName[line.CategoryName].Price).
			Mul(decimal.NewFromInt(int64(line.TotalTickets)))
		purchase.Category[i] = structs.PurchaseLine{
			CategoryName: line.CategoryName,
			TotalTickets: line.TotalTickets,
			TotalPrice:   total.InexactFloat64(),
		}
	}

	if err := svc.Ledger.Insert(ctx, purchase); err != nil {
		// No ledger row, no sale.
		svc.rollback(ctx, eventID, applied)
		return nil, err
	}
	return &purchase, nil
}

// rollback issues the inverse increments for already-applied lines.
// It runs detached from the request's cancellation: once a decrement
// landed, its compensation must be attempted even if the caller is gone.
func (svc *PurchaseService) rollback(ctx context.Context, eventID string, applied []Line) {
	ctx = context.WithoutCancel(ctx)
	for _, line := range applied {
		if err := svc.Inventory.IncrementRemaining(ctx, eventID, line.CategoryName, line.TotalTickets); err != nil {
			logger.L.Errorw("Failed to compensate ticket decrement",
				"eventId", eventID, "category", line.CategoryName,
				"quantity", line.TotalTickets, "error", err)
		}
	}
}

// ValidateLines checks the request shape before the service runs.
func ValidateLines(lines []Line) string {
	if len(lines) == 0 {
		return "At least one ticket category is required"
	}
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if line.CategoryName == "" {
			return "Category name is required"
		}
		if seen[line.CategoryName] {
			return fmt.Sprintf("Duplicate category %q in request", line.CategoryName)
		}
		seen[line.CategoryName] = true
		if line.TotalTickets < 1 {
			return fmt.Sprintf("Invalid ticket quantity for category %q", line.CategoryName)
		}
	}
	return ""
}
