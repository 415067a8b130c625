package httpapi

import (
	"net/http"
	"strconv"

	"github.com/kernelapp/kernel/internal/domain"
	"github.com/kernelapp/kernel/internal/service"
)

func getChangesHandler(f *service.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var since *domain.Timestamp
		if s := q.Get("since"); s != "" {
			ts, err := domain.ParseTimestamp(s)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			since = &ts
		}

		limit := 0
		if l := q.Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		changes, err := f.FetchChanges(r.Context(), since, limit)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, changes)
	}
}
