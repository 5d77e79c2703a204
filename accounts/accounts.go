package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"eventra/db"
	"eventra/globals"
	"eventra/logger"
	"eventra/middleware"
	"eventra/rdx"
	"eventra/structs"
	"eventra/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func findUser(r *http.Request, userID string) (*structs.User, error) {
	var user structs.User
	err := db.UsersCollection.FindOne(r.Context(), bson.M{"userid": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

func findOrganizer(r *http.Request, userID string) (*structs.Organizer, error) {
	var organizer structs.Organizer
	err := db.OrganizersCollection.FindOne(r.Context(), bson.M{"userid": userID}).Decode(&organizer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &organizer, nil
}

// GetProfile returns the caller's own profile, with the organizer
// extension joined in for organizer accounts. Served through the
// redis cache.
func GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	if cached, err := rdx.GetCachedProfile(claims.UserID); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	user, err := findUser(r, claims.UserID)
	if err != nil {
		logger.L.Errorw("Failed to fetch profile", "userId", claims.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if user == nil {
		utils.SendResponse(w, http.StatusNotFound, "User not found", nil)
		return
	}

	profile := map[string]any{"user": user}
	if user.Role == globals.RoleOrganizer {
		organizer, err := findOrganizer(r, claims.UserID)
		if err != nil {
			logger.L.Errorw("Failed to fetch organizer profile", "userId", claims.UserID, "error", err)
			utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
			return
		}
		profile["organizer"] = organizer
	}

	envelope := utils.Envelope{Code: http.StatusOK, Status: utils.StatusOK, Message: "", Data: profile}
	if payload, err := json.Marshal(envelope); err == nil {
		_ = rdx.CacheProfile(claims.UserID, string(payload))
	}
	utils.SendResponse(w, http.StatusOK, "", profile)
}

// UpdateCustomer updates the caller's customer account fields.
func UpdateCustomer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := middleware.ClaimsFrom(r)

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	update := bson.M{}
	if req.Name != nil && *req.Name != "" {
		update["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != "" {
		update["email"] = *req.Email
	}
	if len(update) == 0 {
		utils.SendResponse(w, http.StatusOK, "No changes detected for profile", nil)
		return
	}
	update["updated_at"] = time.Now()

	_ = rdx.InvalidateCachedProfile(claims.UserID)
	result, err := db.UsersCollection.UpdateOne(r.Context(),
		bson.M{"userid": claims.UserID}, bson.M{"$set": update})
	if err != nil {
		logger.L.Errorw("Failed to update customer", "userId", claims.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if result.MatchedCount == 0 {
		utils.SendResponse(w, http.StatusNotFound, "User not found", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "Update customer success", nil)
}

// UpdateEO updates the caller's organizer profile fields.
func UpdateEO(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := middleware.ClaimsFrom(r)

	var req struct {
		EstablishYear *int    `json:"establishYear"`
		ContactNumber *string `json:"contactNumber"`
		Industry      *string `json:"industry"`
		Address       *string `json:"address"`
		Description   *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	update := bson.M{}
	if req.EstablishYear != nil {
		update["establish_year"] = *req.EstablishYear
	}
	if req.ContactNumber != nil && *req.ContactNumber != "" {
		update["contact_number"] = *req.ContactNumber
	}
	if req.Industry != nil {
		update["industry"] = *req.Industry
	}
	if req.Address != nil {
		update["address"] = *req.Address
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if len(update) == 0 {
		utils.SendResponse(w, http.StatusOK, "No changes detected for profile", nil)
		return
	}
	update["updated_at"] = time.Now()

	_ = rdx.InvalidateCachedProfile(claims.UserID)
	result, err := db.OrganizersCollection.UpdateOne(r.Context(),
		bson.M{"userid": claims.UserID}, bson.M{"$set": update})
	if err != nil {
		logger.L.Errorw("Failed to update organizer", "userId", claims.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if result.MatchedCount == 0 {
		utils.SendResponse(w, http.StatusNotFound, "Organizer account not found", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "Update event organizer success", nil)
}

func GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := findUser(r, ps.ByName("userId"))
	if err != nil {
		logger.L.Errorw("Failed to fetch user", "userId", ps.ByName("userId"), "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if user == nil {
		utils.SendResponse(w, http.StatusNotFound, "User not found", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "", user)
}

func GetOrganizer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	organizer, err := findOrganizer(r, ps.ByName("userId"))
	if err != nil {
		logger.L.Errorw("Failed to fetch organizer", "userId", ps.ByName("userId"), "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if organizer == nil {
		utils.SendResponse(w, http.StatusNotFound, "Organizer account not found", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "", organizer)
}

// ViewAccounts lists every user plus organizer profile for admins.
func ViewAccounts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	usersCursor, err := db.UsersCollection.Find(ctx, bson.M{})
	if err != nil {
		logger.L.Errorw("Failed to fetch accounts", "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	defer usersCursor.Close(ctx)
	users := []structs.User{}
	if err := usersCursor.All(ctx, &users); err != nil {
		logger.L.Errorw("Failed to decode accounts", "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	for i := range users {
		users[i].Password = ""
	}

	organizersCursor, err := db.OrganizersCollection.Find(ctx, bson.M{})
	if err != nil {
		logger.L.Errorw("Failed to fetch organizer profiles", "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	defer organizersCursor.Close(ctx)
	organizers := []structs.Organizer{}
	if err := organizersCursor.All(ctx, &organizers); err != nil {
		logger.L.Errorw("Failed to decode organizer profiles", "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	utils.SendResponse(w, http.StatusOK, "", map[string]any{
		"accounts":   users,
		"organizers": organizers,
	})
}

// DeleteAccount removes a user and, for organizers, its profile
// extension. Ticket purchase rows are kept as transaction records.
func DeleteAccount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	accountID := ps.ByName("accountId")
	ctx := r.Context()

	result, err := db.UsersCollection.DeleteOne(ctx, bson.M{"userid": accountID})
	if err != nil {
		logger.L.Errorw("Failed to delete account", "accountId", accountID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if result.DeletedCount == 0 {
		utils.SendResponse(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	if _, err := db.OrganizersCollection.DeleteOne(ctx, bson.M{"userid": accountID}); err != nil {
		logger.L.Errorw("Failed to delete organizer profile", "accountId", accountID, "error", err)
	}

	_ = rdx.InvalidateCachedProfile(accountID)
	if _, err := rdx.RdxDel("refresh:" + accountID); err != nil {
		logger.L.Warnw("Failed to revoke refresh token", "accountId", accountID, "error", err)
	}
	utils.SendResponse(w, http.StatusOK, "Account deleted successfully", nil)
}
