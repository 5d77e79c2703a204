package packages

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"eventra/db"
	"eventra/logger"
	"eventra/middleware"
	"eventra/structs"
	"eventra/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreatePackage lets an admin define a subscription package.
func CreatePackage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		TotalToken  int     `json:"totalToken"`
		Price       float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	switch {
	case req.Name == "":
		utils.SendResponse(w, http.StatusBadRequest, "Name is required", nil)
		return
	case req.TotalToken < 1:
		utils.SendResponse(w, http.StatusBadRequest, "Total token must be at least 1", nil)
		return
	case req.Price < 0:
		utils.SendResponse(w, http.StatusBadRequest, "Invalid price value", nil)
		return
	}

	pkg := structs.Package{
		PackageID:   utils.GenerateID(12),
		Name:        req.Name,
		Description: req.Description,
		TotalToken:  req.TotalToken,
		Price:       req.Price,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if _, err := db.PackagesCollection.InsertOne(r.Context(), pkg); err != nil {
		logger.L.Errorw("Failed to create package", "name", req.Name, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	utils.SendResponse(w, http.StatusCreated, "Create package success", pkg)
}

func GetPackages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cursor, err := db.PackagesCollection.Find(r.Context(), bson.M{},
		&options.FindOptions{Sort: bson.D{{Key: "price", Value: 1}}})
	if err != nil {
		logger.L.Errorw("Failed to fetch packages", "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	defer cursor.Close(r.Context())

	packages := []structs.Package{}
	if err := cursor.All(r.Context(), &packages); err != nil {
		logger.L.Errorw("Failed to decode packages", "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "Successfully get packages", packages)
}

func DeletePackage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	packageID := ps.ByName("packageId")

	result, err := db.PackagesCollection.DeleteOne(r.Context(), bson.M{"packageid": packageID})
	if err != nil {
		logger.L.Errorw("Failed to delete package", "packageId", packageID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if result.DeletedCount == 0 {
		utils.SendResponse(w, http.StatusNotFound, "Package not found", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "Package deleted successfully", nil)
}

// CreatePurchase records an organizer buying a package and credits its
// token count onto the organizer's GPT quota.
func CreatePurchase(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req struct {
		PackageID string `json:"packageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PackageID == "" {
		utils.SendResponse(w, http.StatusBadRequest, "Package id is required", nil)
		return
	}

	ctx := r.Context()
	var pkg structs.Package
	if err := db.PackagesCollection.FindOne(ctx, bson.M{"packageid": req.PackageID}).Decode(&pkg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.SendResponse(w, http.StatusNotFound, "Package not found", nil)
			return
		}
		logger.L.Errorw("Failed to fetch package", "packageId", req.PackageID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	// Credit the quota first; only record the purchase if the credit
	// landed on an existing organizer profile.
	result, err := db.OrganizersCollection.UpdateOne(ctx,
		bson.M{"userid": claims.UserID},
		bson.M{
			"$inc": bson.M{"gpt_access_token_quota": pkg.TotalToken},
			"$set": bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		logger.L.Errorw("Failed to credit quota", "userId", claims.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if result.MatchedCount == 0 {
		utils.SendResponse(w, http.StatusNotFound, "Organizer account not found", nil)
		return
	}

	purchase := structs.PackagePurchase{
		PurchaseID:  utils.GenerateID(12),
		UserID:      claims.UserID,
		PackageID:   pkg.PackageID,
		PackageName: pkg.Name,
		TotalToken:  pkg.TotalToken,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if _, err := db.PackagePurchasesCollection.InsertOne(ctx, purchase); err != nil {
		// Undo the credit so quota and purchase history stay consistent.
		if _, incErr := db.OrganizersCollection.UpdateOne(ctx,
			bson.M{"userid": claims.UserID},
			bson.M{"$inc": bson.M{"gpt_access_token_quota": -pkg.TotalToken}}); incErr != nil {
			logger.L.Errorw("Failed to roll back quota credit",
				"userId", claims.UserID, "packageId", pkg.PackageID, "error", incErr)
		}
		logger.L.Errorw("Failed to record package purchase",
			"userId", claims.UserID, "packageId", pkg.PackageID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	utils.SendResponse(w, http.StatusOK, "Create purchase success", purchase)
}

func GetPurchases(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	cursor, err := db.PackagePurchasesCollection.Find(r.Context(),
		bson.M{"userid": claims.UserID},
		&options.FindOptions{Sort: bson.D{{Key: "created_at", Value: -1}}})
	if err != nil {
		logger.L.Errorw("Failed to get subscription purchases", "userId", claims.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	defer cursor.Close(r.Context())

	purchases := []structs.PackagePurchase{}
	if err := cursor.All(r.Context(), &purchases); err != nil {
		logger.L.Errorw("Failed to decode subscription purchases", "userId", claims.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "Successfully get subscription purchases", purchases)
}
