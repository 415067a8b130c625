package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kernelapp/kernel/internal/domain"
	"github.com/kernelapp/kernel/internal/service"
)

// assetPayload is one {asset_id, asset_url} pair from a document's assets
// or renditions list.
type assetPayload struct {
	AssetID  string `json:"asset_id"`
	AssetURL string `json:"asset_url"`
}

func toBindings(payloads []assetPayload) []service.AssetBinding {
	out := make([]service.AssetBinding, len(payloads))
	for i, p := range payloads {
		out[i] = service.AssetBinding{Slot: p.AssetID, URI: p.AssetURL}
	}
	return out
}

type registerDocumentRequest struct {
	Data       string         `json:"data"`
	Assets     []assetPayload `json:"assets"`
	Renditions []assetPayload `json:"renditions"`
}

// registerDocumentHandler registers a brand-new document on first use and
// appends a version on every later call to the same id, mirroring the
// single PUT endpoint's dual purpose.
func registerDocumentHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req registerDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Data == "" {
			writeError(w, http.StatusBadRequest, "data is required")
			return
		}

		assets := toBindings(req.Assets)
		renditions := toBindings(req.Renditions)

		m, err := f.RegisterDocument(r.Context(), id, req.Data, assets, renditions)
		if errors.Is(err, domain.ErrAlreadyExists) {
			m, err = f.RegisterDocumentVersion(r.Context(), id, req.Data, assets, renditions)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func acceptsXML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/xml")
}

// parseVersionSelector reads the ?version= (1-indexed, absent meaning
// latest; 0 or a negative value is a validation error) and ?when=<ISO>
// query parameters. When both are given, when wins and version is ignored.
func parseVersionSelector(r *http.Request) (int, *domain.Timestamp, error) {
	q := r.URL.Query()
	if when := q.Get("when"); when != "" {
		ts, err := domain.ParseTimestamp(when)
		if err != nil {
			return 0, nil, err
		}
		return 0, &ts, nil
	}
	if v := q.Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, nil, fmt.Errorf("%w: version must be a positive integer", domain.ErrValidation)
		}
		return n, nil, nil
	}
	return 0, nil, nil
}

func getDocumentHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		versionIndex, versionAt, err := parseVersionSelector(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if acceptsXML(r) {
			v, err := f.FetchDocumentData(r.Context(), id, versionIndex, versionAt)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			http.Redirect(w, r, v.Data, http.StatusFound)
			return
		}

		m, err := f.FetchDocumentManifest(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func getDocumentAssetsHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		versionIndex, versionAt, err := parseVersionSelector(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		assets, err := f.FetchAssetsList(r.Context(), id, versionIndex, versionAt)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, assets)
	}
}

type assetBindRequest struct {
	AssetURL string `json:"asset_url"`
}

func registerAssetHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slot := chi.URLParam(r, "slot")
		var req assetBindRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		m, err := f.RegisterAssetVersion(r.Context(), id, slot, req.AssetURL)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func registerRenditionHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slot := chi.URLParam(r, "slot")
		var req assetBindRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		m, err := f.RegisterRenditionVersion(r.Context(), id, slot, req.AssetURL)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}
