package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"eventra/db"
	"eventra/globals"
	"eventra/logger"
	"eventra/middleware"
	"eventra/mq"
	"eventra/rdx"
	"eventra/structs"
	"eventra/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateEvent expects a multipart form with an "event" JSON field and
// an optional "event-banner" file.
func CreateEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Unable to parse form", nil)
		return
	}
	eventJSON := r.FormValue("event")
	if eventJSON == "" {
		utils.SendResponse(w, http.StatusBadRequest, "Missing event data", nil)
		return
	}

	var event structs.Event
	if err := json.Unmarshal([]byte(eventJSON), &event); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid event data", nil)
		return
	}
	if msg := validateEventFields(&event); msg != "" {
		utils.SendResponse(w, http.StatusBadRequest, msg, nil)
		return
	}

	event.EventID = utils.GenerateID(14)
	event.OwnerID = claims.UserID
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	for i := range event.Tickets {
		event.Tickets[i].RemainingTickets = event.Tickets[i].TotalTickets
	}

	if bannerFile, _, err := r.FormFile("event-banner"); err == nil {
		fileName, err := saveBannerImage(event.EventID, bannerFile)
		if err != nil {
			utils.SendResponse(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		event.BannerImage = fileName
	}

	if _, err := db.EventsCollection.InsertOne(r.Context(), event); err != nil {
		logger.L.Errorw("Failed to insert event", "eventId", event.EventID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	go mq.Emit("event-created", mq.Index{EntityType: "event", EntityId: event.EventID, Action: "POST"})
	utils.SendResponse(w, http.StatusCreated, "Event created successfully", event)
}

func GetEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, ok := utils.ParsePagination(r)
	if !ok {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid pagination parameters", nil)
		return
	}

	filter := bson.M{}
	if owner := r.URL.Query().Get("ownerId"); owner != "" {
		filter["ownerid"] = owner
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		filter["tags"] = tag
	}

	ctx := r.Context()
	total, err := db.EventsCollection.CountDocuments(ctx, filter)
	if err != nil {
		logger.L.Errorw("Failed to count events", "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	skip := int64((page - 1) * limit)
	lim := int64(limit)
	cursor, err := db.EventsCollection.Find(ctx, filter, &options.FindOptions{
		Skip:  &skip,
		Limit: &lim,
		Sort:  bson.D{{Key: "start_date", Value: 1}},
	})
	if err != nil {
		logger.L.Errorw("Failed to fetch events", "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	defer cursor.Close(ctx)

	events := []structs.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		logger.L.Errorw("Failed to decode events", "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	utils.SendResponse(w, http.StatusOK, "Events retrieved successfully", map[string]any{
		"events":      events,
		"totalEvents": total,
		"currentPage": page,
	})
}

func GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventId")

	if cached, err := rdx.GetCachedEvent(eventID); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	var event structs.Event
	err := db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.SendResponse(w, http.StatusNotFound, "Event not found", nil)
			return
		}
		logger.L.Errorw("Failed to fetch event", "eventId", eventID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	envelope := utils.Envelope{Code: http.StatusOK, Status: utils.StatusOK, Message: "", Data: event}
	if payload, err := json.Marshal(envelope); err == nil {
		_ = rdx.CacheEvent(eventID, string(payload))
	}
	utils.SendResponse(w, http.StatusOK, "", event)
}

// EditEvent updates scalar event metadata. Ticket categories are
// deliberately not editable here: they change one at a time through
// the category endpoints so edits cannot race purchase decrements.
func EditEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventId")
	claims, _ := middleware.ClaimsFrom(r)

	var req struct {
		Title       *string    `json:"title"`
		SubTitle    *string    `json:"subTitle"`
		Description *string    `json:"description"`
		Location    *string    `json:"location"`
		StartDate   *time.Time `json:"startDate"`
		EndDate     *time.Time `json:"endDate"`
		Tags        []string   `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	updateFields := bson.M{}
	if req.Title != nil {
		updateFields["title"] = *req.Title
	}
	if req.SubTitle != nil {
		updateFields["subtitle"] = *req.SubTitle
	}
	if req.Description != nil {
		updateFields["description"] = *req.Description
	}
	if req.Location != nil {
		updateFields["location"] = *req.Location
	}
	if req.StartDate != nil {
		updateFields["start_date"] = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		updateFields["end_date"] = req.EndDate.UTC()
	}
	if req.Tags != nil {
		updateFields["tags"] = req.Tags
	}
	if len(updateFields) == 0 {
		utils.SendResponse(w, http.StatusOK, "No changes detected for event", nil)
		return
	}
	updateFields["updated_at"] = time.Now()

	result, err := db.EventsCollection.UpdateOne(r.Context(),
		bson.M{"eventid": eventID, "ownerid": claims.UserID},
		bson.M{"$set": updateFields})
	if err != nil {
		logger.L.Errorw("Failed to update event", "eventId", eventID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if result.MatchedCount == 0 {
		utils.SendResponse(w, http.StatusNotFound, "Event not found", nil)
		return
	}

	_ = rdx.InvalidateCachedEvent(eventID)
	go mq.Emit("event-edited", mq.Index{EntityType: "event", EntityId: eventID, Action: "PUT"})
	utils.SendResponse(w, http.StatusOK, "Event updated successfully", updateFields)
}

// AddCategory appends a new ticket category to an event. Existing
// categories are untouched, so in-flight purchases cannot observe a
// replaced array.
func AddCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventId")
	claims, _ := middleware.ClaimsFrom(r)

	var cat structs.TicketCategory
	if err := json.NewDecoder(r.Body).Decode(&cat); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if msg := validateCategories([]structs.TicketCategory{cat}); msg != "" {
		utils.SendResponse(w, http.StatusBadRequest, msg, nil)
		return
	}
	cat.RemainingTickets = cat.TotalTickets

	// Guard: only push when no category of that name exists yet.
	result, err := db.EventsCollection.UpdateOne(r.Context(),
		bson.M{
			"eventid": eventID,
			"ownerid": claims.UserID,
			"tickets.category_name": bson.M{"$ne": cat.CategoryName},
		},
		bson.M{
			"$push": bson.M{"tickets": cat},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		logger.L.Errorw("Failed to add category", "eventId", eventID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if result.MatchedCount == 0 {
		utils.SendResponse(w, http.StatusBadRequest, "Event not found or category already exists", nil)
		return
	}

	_ = rdx.InvalidateCachedEvent(eventID)
	go mq.Emit("event-edited", mq.Index{EntityType: "event", EntityId: eventID, Action: "PUT"})
	utils.SendResponse(w, http.StatusCreated, "Category added successfully", cat)
}

// UpdateCategory patches one category in place through a positional
// guarded update, never replacing the whole array.
func UpdateCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventId")
	categoryName := ps.ByName("categoryName")
	claims, _ := middleware.ClaimsFrom(r)

	var req struct {
		Price   *float64 `json:"price"`
		NewName *string  `json:"newName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	updateFields := bson.M{}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.SendResponse(w, http.StatusBadRequest, "Invalid price value", nil)
			return
		}
		updateFields["tickets.$.price"] = *req.Price
	}
	filter := bson.M{
		"eventid": eventID,
		"ownerid": claims.UserID,
		"tickets": bson.M{"$elemMatch": bson.M{"category_name": categoryName}},
	}
	if req.NewName != nil {
		if *req.NewName == "" {
			utils.SendResponse(w, http.StatusBadRequest, "Category name is required", nil)
			return
		}
		// Renaming must not collide with another category.
		filter["tickets.category_name"] = bson.M{"$ne": *req.NewName}
		updateFields["tickets.$.category_name"] = *req.NewName
	}
	if len(updateFields) == 0 {
		utils.SendResponse(w, http.StatusOK, "No changes detected for category", nil)
		return
	}
	updateFields["updated_at"] = time.Now()

	result, err := db.EventsCollection.UpdateOne(r.Context(), filter, bson.M{"$set": updateFields})
	if err != nil {
		logger.L.Errorw("Failed to update category", "eventId", eventID, "category", categoryName, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if result.MatchedCount == 0 {
		utils.SendResponse(w, http.StatusBadRequest, "Category not found or name already taken", nil)
		return
	}

	_ = rdx.InvalidateCachedEvent(eventID)
	go mq.Emit("event-edited", mq.Index{EntityType: "event", EntityId: eventID, Action: "PUT"})
	utils.SendResponse(w, http.StatusOK, "Category updated successfully", updateFields)
}

// DeleteEvent removes an event; its owner or an admin may do so.
// Ticket purchase rows reference the event weakly and survive as the
// durable transaction record.
func DeleteEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventId")
	claims, _ := middleware.ClaimsFrom(r)

	filter := bson.M{"eventid": eventID}
	if claims.Role != globals.RoleAdmin {
		filter["ownerid"] = claims.UserID
	}

	result, err := db.EventsCollection.DeleteOne(r.Context(), filter)
	if err != nil {
		logger.L.Errorw("Failed to delete event", "eventId", eventID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if result.DeletedCount == 0 {
		utils.SendResponse(w, http.StatusNotFound, "Event not found", nil)
		return
	}

	_ = rdx.InvalidateCachedEvent(eventID)
	go mq.Emit("event-deleted", mq.Index{EntityType: "event", EntityId: eventID, Action: "DELETE"})
	utils.SendResponse(w, http.StatusOK, "Event deleted successfully", nil)
}
