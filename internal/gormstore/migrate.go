package gormstore

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

//go:embed migrations/mysql/*.sql
var mysqlMigrations embed.FS

// Migrate brings the schema up to date for dialects with versioned SQL
// migrations (postgres, mysql). The sqlite test dialect is migrated with
// AutoMigrate in AutoMigrateSQLite instead, since it only ever backs short-
// lived in-memory test databases.
func Migrate(db *gorm.DB) error {
	locker := newMigrationLocker(db)
	return locker.withLock(context.Background(), func() error {
		return migrate0(db)
	})
}

func migrate0(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}

	dialect := db.Dialector.Name()
	var (
		driver database.Driver
		fsys   embed.FS
		subdir string
	)
	switch dialect {
	case "postgres":
		driver, err = postgres.WithInstance(sqlDB, &postgres.Config{})
		fsys, subdir = postgresMigrations, "migrations/postgres"
	case "mysql":
		driver, err = mysql.WithInstance(sqlDB, &mysql.Config{})
		fsys, subdir = mysqlMigrations, "migrations/mysql"
	default:
		return fmt.Errorf("gormstore: no versioned migrations for dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("create migrate driver for %s: %w", dialect, err)
	}

	source, err := iofs.New(fsys, subdir)
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// AutoMigrateSQLite creates the schema via gorm.AutoMigrate, used only by
// the in-memory test dialect where versioned migrations would be overkill.
func AutoMigrateSQLite(db *gorm.DB) error {
	return db.AutoMigrate(&JournalRecord{}, &BundleRecord{}, &DocumentRecord{}, &ChangeRecord{})
}
