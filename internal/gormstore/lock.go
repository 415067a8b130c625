package gormstore

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"time"

	"gorm.io/gorm"
)

// migrationLocker serializes schema migration across concurrent kernel
// server replicas starting up against the same database.
type migrationLocker interface {
	// withLock runs fn while holding the migration lock, then releases it
	// once fn returns. The postgres lock blocks until acquired; the table
	// lock gives up with an error after a bounded number of attempts.
	withLock(ctx context.Context, fn func() error) error
}

// newMigrationLocker picks a locking strategy appropriate for db's dialect.
// Postgres uses a session advisory lock; other dialects fall back to a
// lock table with insert-or-fail semantics and stale-lock cleanup.
func newMigrationLocker(db *gorm.DB) migrationLocker {
	if db.Dialector.Name() == "postgres" {
		return &pgAdvisoryLock{
			db:     db,
			lockID: int64(crc32.ChecksumIEEE([]byte("kernel-server-migration"))),
		}
	}
	lock := &tableMigrationLock{db: db}
	_ = db.AutoMigrate(&migrationLockRecord{})
	return lock
}

type pgAdvisoryLock struct {
	db     *gorm.DB
	lockID int64
}

func (l *pgAdvisoryLock) withLock(ctx context.Context, fn func() error) error {
	if err := l.db.WithContext(ctx).Exec("SELECT pg_advisory_lock(?)", l.lockID).Error; err != nil {
		return fmt.Errorf("acquire migration advisory lock: %w", err)
	}
	defer func() {
		_ = l.db.Exec("SELECT pg_advisory_unlock(?)", l.lockID).Error
	}()
	return fn()
}

// migrationLockRecord is the lock row used by tableMigrationLock.
type migrationLockRecord struct {
	ID       string    `gorm:"primaryKey;column:id"`
	LockedAt time.Time `gorm:"column:locked_at"`
	LockedBy string    `gorm:"column:locked_by"`
}

func (migrationLockRecord) TableName() string { return "migration_lock" }

type tableMigrationLock struct {
	db *gorm.DB
}

func (l *tableMigrationLock) withLock(ctx context.Context, fn func() error) error {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	const maxRetries = 30
	const retryInterval = time.Second
	const staleLockAge = 5 * time.Minute

	acquired := false
	for i := 0; i < maxRetries; i++ {
		l.db.WithContext(ctx).
			Where("id = ? AND locked_at < ?", "migration", time.Now().Add(-staleLockAge)).
			Delete(&migrationLockRecord{})

		row := migrationLockRecord{ID: "migration", LockedAt: time.Now(), LockedBy: hostname}
		if result := l.db.WithContext(ctx).Create(&row); result.Error == nil {
			acquired = true
			break
		}

		if i == maxRetries-1 {
			return fmt.Errorf("acquire migration lock after %d retries", maxRetries)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	if !acquired {
		return fmt.Errorf("acquire migration lock")
	}

	defer func() {
		l.db.Where("id = ?", "migration").Delete(&migrationLockRecord{})
	}()
	return fn()
}
