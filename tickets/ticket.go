package tickets

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"eventra/globals"
	"eventra/logger"
	"eventra/middleware"
	"eventra/mq"
	"eventra/utils"

	"github.com/julienschmidt/httprouter"
)

var service *PurchaseService

func Init() {
	service = &PurchaseService{Inventory: MongoInventory{}, Ledger: MongoLedger{}}
}

// BuyTickets handles POST /events/:eventId/purchase-tickets.
func BuyTickets(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventId")
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req struct {
		Detail []Line `json:"detail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if msg := ValidateLines(req.Detail); msg != "" {
		utils.SendResponse(w, http.StatusBadRequest, msg, nil)
		return
	}

	purchase, err := service.BuyTickets(r.Context(), claims.UserID, eventID, req.Detail)
	if err != nil {
		var catNotFound *CategoryNotFoundError
		var insufficient *InsufficientInventoryError
		switch {
		case errors.Is(err, ErrEventNotFound):
			utils.SendResponse(w, http.StatusNotFound, "Event not found", nil)
		case errors.As(err, &catNotFound):
			utils.SendResponse(w, http.StatusBadRequest, err.Error(), nil)
		case errors.As(err, &insufficient):
			utils.SendResponse(w, http.StatusBadRequest, err.Error(), nil)
		default:
			logger.L.Errorw("Failed to buy ticket",
				"eventId", eventID, "userId", claims.UserID,
				"detail", req.Detail, "error", err)
			utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		}
		return
	}

	go mq.Emit("ticket-bought", mq.Index{
		EntityType: "ticketpurchase", EntityId: purchase.PurchaseID,
		Action: "POST", ItemType: "event", ItemId: eventID,
	})
	utils.SendResponse(w, http.StatusOK, "Buy ticket success", purchase)
}

// GetTickets handles GET /tickets with page/limit/status filters. Any
// purchase whose event has ended is lazily flipped to done first.
func GetTickets(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	page, limit, ok := utils.ParsePagination(r)
	if !ok {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid pagination parameters", nil)
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && status != globals.PurchaseActive && status != globals.PurchaseDone {
		utils.SendResponse(w, http.StatusBadRequest, "Status must be one of [active, done]", nil)
		return
	}

	ctx := r.Context()
	if _, err := service.Ledger.SweepExpired(ctx, time.Now()); err != nil {
		// Listing with stale statuses beats failing the request.
		logger.L.Warnw("Ticket status sweep failed", "error", err)
	}

	total, err := service.Ledger.Count(ctx, claims.UserID, status)
	if err != nil {
		logger.L.Errorw("Failed to count tickets", "userId", claims.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	if int64(page) > totalPages && totalPages != 0 {
		utils.SendResponse(w, http.StatusBadRequest,
			"Requested page exceeds the total number of pages, no tickets to show.",
			map[string]any{
				"tickets":      []struct{}{},
				"totalTickets": 0,
				"currentPage":  page,
				"totalPages":   totalPages,
			})
		return
	}

	tickets, err := service.Ledger.List(ctx, claims.UserID, status, int64((page-1)*limit), int64(limit))
	if err != nil {
		logger.L.Errorw("Failed to retrieve tickets",
			"userId", claims.UserID, "status", status,
			"page", page, "limit", limit, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	utils.SendResponse(w, http.StatusOK, "Tickets retrieved successfully", map[string]any{
		"tickets":      tickets,
		"totalTickets": total,
		"currentPage":  page,
		"totalPages":   totalPages,
	})
}

// GetTicket handles GET /tickets/:ticketId, scoped to the owner.
func GetTicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ticketID := ps.ByName("ticketId")
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	ticket, err := service.Ledger.FindByID(r.Context(), ticketID, claims.UserID)
	if err != nil {
		logger.L.Errorw("Failed to retrieve ticket detail", "ticketId", ticketID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if ticket == nil {
		utils.SendResponse(w, http.StatusNotFound, "Ticket not found", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "Ticket retrieved successfully", ticket)
}
