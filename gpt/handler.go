package gpt

import (
	"encoding/json"
	"errors"
	"net/http"

	"eventra/config"
	"eventra/logger"
	"eventra/middleware"
	"eventra/utils"

	"github.com/julienschmidt/httprouter"
)

var service *QuotaService

func Init(cfg config.GPTConfig) {
	service = &QuotaService{Quota: MongoQuotaStore{}, Gen: NewChatClient(cfg)}
}

// GenerateDescription handles POST /generate-description.
func GenerateDescription(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFrom(r)
	if !ok {
		utils.SendResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		utils.SendResponse(w, http.StatusBadRequest, "Text is required", nil)
		return
	}

	description, quota, err := service.GenerateDescription(r.Context(), claims.UserID, req.Text)
	if err != nil {
		var upstream *UpstreamError
		switch {
		case errors.Is(err, ErrOrganizerNotFound):
			utils.SendResponse(w, http.StatusNotFound, "Organizer account not found", nil)
		case errors.Is(err, ErrQuotaExhausted):
			utils.SendResponse(w, http.StatusTooManyRequests,
				"GPT quota exhausted, purchase a package to get more", nil)
		case errors.As(err, &upstream):
			logger.L.Errorw("Failed to generate description",
				"userId", claims.UserID, "error", err)
			utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		default:
			logger.L.Errorw("Failed to meter description generation",
				"userId", claims.UserID, "error", err)
			utils.SendResponse(w, http.StatusInternalServerError, "Something went wrong", nil)
		}
		return
	}

	utils.SendResponse(w, http.StatusOK, "Successfully received generated description", map[string]any{
		"generatedDescription": description,
		"gptQuota":             quota,
	})
}
