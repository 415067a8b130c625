package gormstore

import (
	"github.com/kernelapp/kernel/internal/store"
	"gorm.io/gorm"
)

// NewSession builds a *store.Session backed by db, with every handle
// wrapped in the bounded-exponential-backoff retry decorator per cfg.
func NewSession(db *gorm.DB, cfg store.RetryConfig) *store.Session {
	journals := store.NewRetryingDataStore(newJournalStore(db), cfg)
	bundles := store.NewRetryingDataStore(newBundleStore(db), cfg)
	documents := store.NewRetryingDataStore(newDocumentStore(db), cfg)
	changes := store.NewRetryingChangesDataStore(newChangeStore(db), cfg)

	return store.NewSession(journals, bundles, documents, changes)
}
