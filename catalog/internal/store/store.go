// Package store is the data access layer for the catalog service:
// products, their brand/category/prompt taxonomies, and imported
// reviews, all in one SQLite database.
package store

import "database/sql"

// Store wraps the catalog database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
