package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kernelapp/kernel/internal/service"
)

// Options configures the router. A nil RoleExtractor falls back to
// DefaultRoleExtractor (the X-User-Role header).
type Options struct {
	RoleExtractor RoleExtractor
}

// NewRouter builds the full chi router over facade, wiring every endpoint
// from the external interface table: journals, documents bundles,
// documents, assets/renditions and the change feed.
func NewRouter(facade *service.Facade, opts Options) chi.Router {
	extractor := opts.RoleExtractor
	if extractor == nil {
		extractor = DefaultRoleExtractor
	}
	operator := RequireRole(RoleOperator, extractor)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "PUT", "PATCH", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/journals/{id}", func(r chi.Router) {
		r.With(operator).Put("/", createJournalHandler(facade))
		r.Get("/", getJournalHandler(facade))
		r.With(operator).Patch("/metadata", patchJournalMetadataHandler(facade))
		r.With(operator).Put("/bundles/{bundleID}", addBundleToJournalHandler(facade))
	})

	r.Route("/bundles/{id}", func(r chi.Router) {
		r.With(operator).Put("/", createBundleHandler(facade))
		r.Get("/", getBundleHandler(facade))
		r.With(operator).Put("/documents/{docID}", addDocumentToBundleHandler(facade))
	})

	r.Route("/documents/{id}", func(r chi.Router) {
		r.With(operator).Put("/", registerDocumentHandler(facade))
		r.Get("/", getDocumentHandler(facade))
		r.Get("/assets", getDocumentAssetsHandler(facade))
		r.With(operator).Put("/assets/{slot}", registerAssetHandler(facade))
		r.With(operator).Put("/renditions/{slot}", registerRenditionHandler(facade))
	})

	r.Get("/changes", getChangesHandler(facade))

	return r
}
