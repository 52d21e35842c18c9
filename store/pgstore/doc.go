// Package pgstore implements [tokenguard.PrincipalStore] on PostgreSQL with
// jackc/pgx.
//
// Principals live in the users table and roles in the roles table. Role
// capabilities are stored as one comma-delimited permissions column.
//
// # What this package must NOT do
//
//   - Hash or verify passwords.
//   - Cache rows; every call hits the database.
package pgstore
