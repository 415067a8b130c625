package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kernelapp/kernel/internal/domain"
	"github.com/kernelapp/kernel/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusForError maps a domain/store error kind to a response status:
// NotFound -> 404, AlreadyExists/AlreadyDeleted/DuplicateReference -> 409,
// Validation/AssetSlotUnknown/UnknownReference -> 400, backend failures
// (RetryableExhausted, ChangeLogAppendFailed) -> 503, anything else -> 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrAlreadyDeleted),
		errors.Is(err, domain.ErrDuplicateReference):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAssetSlotUnknown),
		errors.Is(err, domain.ErrUnknownReference):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrRetryableExhausted),
		errors.Is(err, store.ErrChangeLogAppendFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}
