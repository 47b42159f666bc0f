package errors

import (
	"net/http"

	"github.com/goccy/go-json"

	"sales-analytics/internal/models"
)

type SuccessResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data"`
	Meta    *models.Meta `json:"meta,omitempty"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessWithMeta(w, data, nil)
}

func WriteSuccessWithMeta(w http.ResponseWriter, data any, meta *models.Meta) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func WriteSuccessWithHeaders(w http.ResponseWriter, data any, meta *models.Meta, headers map[string]string) {
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	WriteSuccessWithMeta(w, data, meta)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
