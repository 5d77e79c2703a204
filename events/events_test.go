package events

import (
	"testing"
	"time"

	"eventra/structs"

	"github.com/stretchr/testify/assert"
)

func validTestEvent() *structs.Event {
	return &structs.Event{
		Title:     "Summer Fest",
		Location:  "Riverside Park",
		StartDate: time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 1, 23, 0, 0, 0, time.UTC),
		Tickets: []structs.TicketCategory{
			{CategoryName: "VIP", TotalTickets: 50, Price: 100},
			{CategoryName: "GA", TotalTickets: 500, Price: 25.50},
		},
	}
}

func TestValidateEventFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*structs.Event)
		wantMsg string
	}{
		{"valid", func(*structs.Event) {}, ""},
		{"missing title", func(e *structs.Event) { e.Title = "" }, "Title is required"},
		{"missing location", func(e *structs.Event) { e.Location = "" }, "Location is required"},
		{"missing dates", func(e *structs.Event) { e.StartDate = time.Time{} }, "Start and end dates are required"},
		{"end before start", func(e *structs.Event) {
			e.EndDate = e.StartDate.Add(-time.Hour)
		}, "End date must be after start date"},
		{"no categories", func(e *structs.Event) { e.Tickets = nil }, "At least one ticket category is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validTestEvent()
			tt.mutate(event)
			assert.Equal(t, tt.wantMsg, validateEventFields(event))
		})
	}
}

func TestValidateCategories(t *testing.T) {
	tests := []struct {
		name       string
		categories []structs.TicketCategory
		wantMsg    bool
	}{
		{"valid", []structs.TicketCategory{{CategoryName: "VIP", TotalTickets: 10, Price: 50}}, false},
		{"free tickets allowed", []structs.TicketCategory{{CategoryName: "Guest", TotalTickets: 10, Price: 0}}, false},
		{"empty name", []structs.TicketCategory{{CategoryName: "", TotalTickets: 10, Price: 50}}, true},
		{"duplicate name", []structs.TicketCategory{
			{CategoryName: "VIP", TotalTickets: 10, Price: 50},
			{CategoryName: "VIP", TotalTickets: 5, Price: 75},
		}, true},
		{"zero tickets", []structs.TicketCategory{{CategoryName: "VIP", TotalTickets: 0, Price: 50}}, true},
		{"negative price", []structs.TicketCategory{{CategoryName: "VIP", TotalTickets: 10, Price: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validateCategories(tt.categories)
			if tt.wantMsg {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}
