// Package database manages the SQLite store behind the schedule.
//
// It opens the database with WAL mode and a busy timeout, limits the pool to a
// single connection (SQLite has one writer), and applies versioned SQL
// migrations supplied as an fs.FS.
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Applied versions are recorded in the
// schema_migrations table, so Migrate is safe to call on every start.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
