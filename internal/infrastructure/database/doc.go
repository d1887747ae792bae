// Package database manages the SQLite connection and schema migrations.
//
// Migrations are embedded into the binary by the top-level migrations
// package and applied on startup, each in its own transaction.
package database
