// Package database provides the bridge's SQLite store.
//
// It opens the database in WAL mode with a busy timeout, restricts the file
// to its owner, and applies the SQL migrations registered in MigrationsFS
// (see the top-level migrations package). The only consumer today is the
// command audit trail in internal/audit.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.{up,down}.sql. Each
// pending migration runs in its own transaction.
package database
