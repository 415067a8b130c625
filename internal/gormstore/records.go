// Package gormstore is a document-oriented persistence adapter over
// gorm.io/gorm. Each aggregate kind gets its own table; a row holds the
// aggregate id, its manifest serialized as JSON, and an optimistic-
// concurrency version token.
package gormstore

import (
	"encoding/json"
	"time"

	"github.com/kernelapp/kernel/internal/domain"
)

// JournalRecord is the journals table row.
type JournalRecord struct {
	ID        string `gorm:"primaryKey;column:id"`
	Manifest  []byte `gorm:"column:manifest;type:jsonb"`
	Version   int    `gorm:"column:version"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (JournalRecord) TableName() string { return "journals" }

// BundleRecord is the documents_bundles table row.
type BundleRecord struct {
	ID        string `gorm:"primaryKey;column:id"`
	Manifest  []byte `gorm:"column:manifest;type:jsonb"`
	Version   int    `gorm:"column:version"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BundleRecord) TableName() string { return "documents_bundles" }

// DocumentRecord is the documents table row.
type DocumentRecord struct {
	ID        string `gorm:"primaryKey;column:id"`
	Manifest  []byte `gorm:"column:manifest;type:jsonb"`
	Version   int    `gorm:"column:version"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DocumentRecord) TableName() string { return "documents" }

// ChangeRecord is a single append-only row in the changes feed.
type ChangeRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"column:timestamp;index"`
	Entity    string    `gorm:"column:entity"`
	EntityID  string    `gorm:"column:entity_id"`
	Deleted   bool      `gorm:"column:deleted"`
}

func (ChangeRecord) TableName() string { return "changes" }

func marshalManifest(m any) ([]byte, error) {
	return json.Marshal(m)
}

func unmarshalManifest[M any](data []byte) (M, error) {
	var m M
	err := json.Unmarshal(data, &m)
	return m, err
}

func toChangeRecord(c domain.ChangeEvent) ChangeRecord {
	return ChangeRecord{
		Timestamp: c.Timestamp.Time(),
		Entity:    string(c.Entity),
		EntityID:  c.ID,
		Deleted:   c.Deleted,
	}
}

func fromChangeRecord(r ChangeRecord) domain.ChangeEvent {
	return domain.ChangeEvent{
		Timestamp: domain.NewTimestamp(r.Timestamp),
		Entity:    domain.Kind(r.Entity),
		ID:        r.EntityID,
		Deleted:   r.Deleted,
	}
}
