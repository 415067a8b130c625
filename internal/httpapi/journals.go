package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kernelapp/kernel/internal/domain"
	"github.com/kernelapp/kernel/internal/service"
)

type createJournalRequest struct {
	Metadata map[string]any `json:"metadata"`
}

func createJournalHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req createJournalRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}
		m, err := f.CreateJournal(r.Context(), id, req.Metadata)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func getJournalHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		m, err := f.FetchJournalManifest(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// journalMetadataRequest sets Key to Value, or clears Key when Clear is
// true (Value is ignored in that case).
type journalMetadataRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Clear bool   `json:"clear"`
}

func patchJournalMetadataHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req journalMetadataRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Key == "" {
			writeError(w, http.StatusBadRequest, "key is required")
			return
		}

		var m domain.JournalManifest
		var err error
		if req.Clear {
			m, err = f.ClearJournalMetadata(r.Context(), id, req.Key)
		} else {
			m, err = f.SetJournalMetadata(r.Context(), id, req.Key, req.Value)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func addBundleToJournalHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		journalID := chi.URLParam(r, "id")
		bundleID := chi.URLParam(r, "bundleID")
		m, err := f.AddDocumentsBundleToJournal(r.Context(), journalID, bundleID, nil)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}
