// Package database provides PostgreSQL connection pool management.
//
// The pool backs the postgres driver of the sent-news dedup store.
package database
