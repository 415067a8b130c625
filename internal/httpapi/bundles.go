package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kernelapp/kernel/internal/service"
)

type createBundleRequest struct {
	Metadata map[string]any `json:"metadata"`
}

func createBundleHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req createBundleRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}
		m, err := f.CreateDocumentsBundle(r.Context(), id, req.Metadata)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func getBundleHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		m, err := f.FetchDocumentsBundleManifest(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func addDocumentToBundleHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundleID := chi.URLParam(r, "id")
		docID := chi.URLParam(r, "docID")
		m, err := f.AddDocumentToDocumentsBundle(r.Context(), bundleID, docID, nil)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}
