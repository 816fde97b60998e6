package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// envelope is the uniform response shape of the API.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, e envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(e); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func respondSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	respond(w, r, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respond(w, r, status, envelope{Success: false, Message: message})
}

// respondValidation answers a 422 with the field-level error map.
func respondValidation(w http.ResponseWriter, r *http.Request, message string, errs map[string]string) {
	respond(w, r, http.StatusUnprocessableEntity, envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}
