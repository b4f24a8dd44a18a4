// Package database provides SQLite connectivity for the air control core.
//
// The controller keeps one local SQLite file holding the audit trail of
// confirmed actuator state changes. This package manages:
//   - Connection with WAL mode and busy timeout
//   - Embedded, versioned schema migrations
//   - Health checks for the process supervisor
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Each migration has both .up.sql and .down.sql files named
// YYYYMMDD_HHMMSS_description.
package database
