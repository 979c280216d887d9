package apierr

import (
	"encoding/json"
	"net/http"

	"gitactivity/internal/models"
)

var (
	ErrActivityFetch = &AppError{http.StatusInternalServerError, "Failed to fetch git activity"}
	ErrStatsFetch    = &AppError{http.StatusInternalServerError, "Failed to fetch git statistics"}
	ErrNotFound      = &AppError{http.StatusNotFound, "Not found"}
)

type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string { return e.Message }

func JSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func Write(w http.ResponseWriter, e *AppError) {
	JSON(w, e.Status, e.Message)
}
