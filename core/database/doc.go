// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure Postgres, MySQL or SQLite connections from the
// application's configuration, with bounded connect/ping timeouts and pool limits.
// SQLite connections are pinned to a single connection so that ":memory:"
// databases are shared and writes are serialized.
//
// # Schema Inspection
//
// GetTableColumns reads the live column list of a table (SHOW COLUMNS,
// PRAGMA table_info or information_schema) so the integrity feature can compare
// it to the contacts model.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "contacts")
package database
