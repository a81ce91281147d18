// Package preflight provides filesystem readiness checks that run before an
// import, match or export touches the database.
//
// A failed check stops the command before any work starts, so a missing dump
// or a read-only data directory is reported up front instead of after the
// store has been locked.
package preflight
