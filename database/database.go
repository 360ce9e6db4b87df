package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mbolis/quick-inspect/config"
)

func Open(cfg config.Config) (db *sql.DB, err error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cfg.DBUrl)
	db, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return
	}

	// a single local user: one connection keeps writers from tripping over SQLITE_BUSY
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	err = migrateDB(db)
	if err != nil {
		err = multierror.Append(err, db.Close()).ErrorOrNil()
		db = nil
		return
	}

	return
}
