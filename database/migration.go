package database

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mbolis/quick-inspect/log"
	"github.com/pkg/errors"
)

//go:embed migrations
var dbMigrations embed.FS

func migrateDB(db *sql.DB) error {
	src, err := iofs.New(dbMigrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "migrations source")
	}

	dst, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return errors.Wrap(err, "migrations target")
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "sqlite3", dst)
	if err != nil {
		return errors.Wrap(err, "migrator")
	}

	if err = migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrate up")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return errors.Wrap(err, "migration version")
	}
	if dirty {
		return errors.Errorf("schema version %d is dirty, fix the database by hand", version)
	}
	log.Debugf("db.migrate: schema at version %d", version)
	return nil
}
