package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"eventra/config"
	"eventra/db"
	"eventra/globals"
	"eventra/logger"
	"eventra/middleware"
	"eventra/rdx"
	"eventra/structs"
	"eventra/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var jwtCfg config.JWTConfig

func Init(cfg config.JWTConfig) {
	jwtCfg = cfg
}

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerEORequest struct {
	registerRequest
	EstablishYear int    `json:"establishYear"`
	ContactNumber string `json:"contactNumber"`
	Industry      string `json:"industry"`
	Address       string `json:"address"`
	Description   string `json:"description"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         structs.User `json:"user"`
}

func issueToken(user structs.User, expiry time.Duration) (string, error) {
	claims := structs.Claims{
		Username: user.Username,
		UserID:   user.UserID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtCfg.Secret))
}

func (req registerRequest) validate() string {
	switch {
	case req.Username == "":
		return "Username is required"
	case req.Name == "":
		return "Name is required"
	case req.Email == "":
		return "Email is required"
	case len(req.Password) < 8:
		return "Password must be at least 8 characters"
	}
	return ""
}

func createUser(ctx context.Context, req registerRequest, role string) (*structs.User, string, error) {
	count, err := db.UsersCollection.CountDocuments(ctx, bson.M{
		"$or": []bson.M{{"username": req.Username}, {"email": req.Email}},
	})
	if err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "Username or email already taken", nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := structs.User{
		UserID:    utils.GenerateID(12),
		Username:  req.Username,
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := db.UsersCollection.InsertOne(ctx, user); err != nil {
		return nil, "", err
	}
	return &user, "", nil
}

// Register creates a customer account.
func Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if msg := req.validate(); msg != "" {
		utils.SendResponse(w, http.StatusBadRequest, msg, nil)
		return
	}

	user, conflict, err := createUser(r.Context(), req, globals.RoleCustomer)
	if err != nil {
		logger.L.Errorw("Failed to register user", "username", req.Username, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if conflict != "" {
		utils.SendResponse(w, http.StatusBadRequest, conflict, nil)
		return
	}

	user.Password = ""
	utils.SendResponse(w, http.StatusCreated, "Register success", user)
}

// RegisterEO creates an organizer account plus its organizer profile.
// The profile starts with zero GPT quota; quota is credited only via
// package purchases.
func RegisterEO(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req registerEORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if msg := req.validate(); msg != "" {
		utils.SendResponse(w, http.StatusBadRequest, msg, nil)
		return
	}
	if req.ContactNumber == "" {
		utils.SendResponse(w, http.StatusBadRequest, "Contact number is required", nil)
		return
	}

	ctx := r.Context()
	user, conflict, err := createUser(ctx, req.registerRequest, globals.RoleOrganizer)
	if err != nil {
		logger.L.Errorw("Failed to register organizer", "username", req.Username, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if conflict != "" {
		utils.SendResponse(w, http.StatusBadRequest, conflict, nil)
		return
	}

	organizer := structs.Organizer{
		UserID:              user.UserID,
		EstablishYear:       req.EstablishYear,
		ContactNumber:       req.ContactNumber,
		Industry:            req.Industry,
		Address:             req.Address,
		Description:         req.Description,
		GPTAccessTokenQuota: 0,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
	if _, err := db.OrganizersCollection.InsertOne(ctx, organizer); err != nil {
		// Undo the user insert so a half-registered organizer cannot log in.
		if _, delErr := db.UsersCollection.DeleteOne(ctx, bson.M{"userid": user.UserID}); delErr != nil {
			logger.L.Errorw("Failed to roll back user after organizer insert failure",
				"userId", user.UserID, "error", delErr)
		}
		logger.L.Errorw("Failed to create organizer profile", "userId", user.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	user.Password = ""
	utils.SendResponse(w, http.StatusCreated, "Register success", map[string]any{
		"user":      user,
		"organizer": organizer,
	})
}

func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.Username == "" || req.Password == "" {
		utils.SendResponse(w, http.StatusBadRequest, "Username and password are required", nil)
		return
	}

	var user structs.User
	err := db.UsersCollection.FindOne(r.Context(), bson.M{"username": req.Username, "is_active": true}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.SendResponse(w, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		logger.L.Errorw("Failed to look up user on login", "username", req.Username, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		utils.SendResponse(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	accessToken, err := issueToken(user, jwtCfg.AccessExpiry)
	if err != nil {
		logger.L.Errorw("Failed to sign access token", "userId", user.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	refreshToken, err := issueToken(user, jwtCfg.RefreshExpiry)
	if err != nil {
		logger.L.Errorw("Failed to sign refresh token", "userId", user.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	// Refresh tokens are revocable: logout deletes this key.
	if err := rdx.Client.Set(r.Context(), "refresh:"+user.UserID, refreshToken, jwtCfg.RefreshExpiry).Err(); err != nil {
		logger.L.Warnw("Failed to store refresh token", "userId", user.UserID, "error", err)
	}

	user.Password = ""
	utils.SendResponse(w, http.StatusOK, "Login success", tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

func RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		utils.SendResponse(w, http.StatusBadRequest, "Refresh token is required", nil)
		return
	}

	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		utils.SendResponse(w, http.StatusUnauthorized, "Invalid token", nil)
		return
	}
	stored, err := rdx.RdxGet("refresh:" + claims.UserID)
	if err != nil || stored != req.RefreshToken {
		utils.SendResponse(w, http.StatusUnauthorized, "Token revoked", nil)
		return
	}

	user := structs.User{Username: claims.Username, UserID: claims.UserID, Role: claims.Role}
	accessToken, err := issueToken(user, jwtCfg.AccessExpiry)
	if err != nil {
		logger.L.Errorw("Failed to sign access token", "userId", claims.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "Token refreshed", map[string]string{"accessToken": accessToken})
}

func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	if _, err := rdx.RdxDel("refresh:" + claims.UserID); err != nil {
		logger.L.Warnw("Failed to revoke refresh token", "userId", claims.UserID, "error", err)
	}
	_ = rdx.InvalidateCachedProfile(claims.UserID)
	utils.SendResponse(w, http.StatusOK, "Logout success", nil)
}

func ChangePassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if len(req.NewPassword) < 8 {
		utils.SendResponse(w, http.StatusBadRequest, "Password must be at least 8 characters", nil)
		return
	}

	var user structs.User
	if err := db.UsersCollection.FindOne(r.Context(), bson.M{"userid": claims.UserID}).Decode(&user); err != nil {
		utils.SendResponse(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) != nil {
		utils.SendResponse(w, http.StatusBadRequest, "Old password does not match", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	_, err = db.UsersCollection.UpdateOne(r.Context(),
		bson.M{"userid": claims.UserID},
		bson.M{"$set": bson.M{"password": string(hashedPassword), "updated_at": time.Now()}})
	if err != nil {
		logger.L.Errorw("Failed to update password", "userId", claims.UserID, "error", err)
		utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	utils.SendResponse(w, http.StatusOK, "Password changed", nil)
}
