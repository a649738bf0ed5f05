// Package sqlite implements the store interfaces on an embedded SQLite file
// using the pure-Go modernc.org/sqlite driver, jmoiron/sqlx for scanning and
// pressly/goose for schema migrations.
//
// Writes are serialized through a single connection; every multi-statement
// write runs inside store.RunInTransaction.
package sqlite
