// Package testdb provides utilities for tests that need a real PostgreSQL
// database.
//
// Tests call GetTestDB to obtain a migrated connection pool and WithTx to run
// their body inside a transaction that is always rolled back, so tests never
// see each other's rows. When no database URL is configured the tests are
// skipped rather than failed.
package testdb
