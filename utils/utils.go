package utils

import (
	"encoding/json"
	rndm "math/rand"
	"net/http"
	"strconv"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Envelope is the uniform response shape of every endpoint. Status is
// ERROR iff Code >= 400.
type Envelope struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func SendResponse(w http.ResponseWriter, code int, message string, data any) {
	status := StatusOK
	if code >= 400 {
		status = StatusError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	response := Envelope{
		Code:    code,
		Status:  status,
		Message: message,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func GenerateID(n int) string {
	var letters = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")

	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rndm.Intn(len(letters))]
	}
	return string(b)
}

// ParsePagination reads page and limit query parameters with the
// defaults and bounds the list endpoints share.
func ParsePagination(r *http.Request) (page, limit int, ok bool) {
	page, limit = 1, 10

	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, 0, false
		}
		page = parsed
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return 0, 0, false
		}
		limit = parsed
	}
	return page, limit, true
}
