package middleware

import (
	"context"
	"net/http"
	"strings"

	"eventra/globals"
	"eventra/structs"
	"eventra/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

var jwtSecret []byte

func Init(secret string) {
	jwtSecret = []byte(secret)
}

func ParseToken(tokenString string) (*structs.Claims, error) {
	claims := &structs.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			utils.SendResponse(w, http.StatusUnauthorized, "Missing token", nil)
			return
		}
		if !strings.HasPrefix(tokenString, "Bearer ") {
			utils.SendResponse(w, http.StatusUnauthorized, "Invalid token format", nil)
			return
		}

		claims, err := ParseToken(strings.TrimPrefix(tokenString, "Bearer "))
		if err != nil {
			utils.SendResponse(w, http.StatusUnauthorized, "Invalid token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.ClaimsKey, claims)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRole guards a route already wrapped with Authenticate.
func RequireRole(role string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, ok := r.Context().Value(globals.ClaimsKey).(*structs.Claims)
		if !ok || claims.Role != role {
			utils.SendResponse(w, http.StatusForbidden, "You are not allowed", nil)
			return
		}
		next(w, r, ps)
	}
}

// ClaimsFrom pulls the authenticated claims out of the request context.
func ClaimsFrom(r *http.Request) (*structs.Claims, bool) {
	claims, ok := r.Context().Value(globals.ClaimsKey).(*structs.Claims)
	return claims, ok
}
