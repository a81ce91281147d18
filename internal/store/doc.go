// Package store persists DNB authority records, Gazetteer records and fuzzy
// match candidates in a single SQLite database.
//
// The database is opened for exclusive use: one connection, exclusive locking
// mode and an advisory lock file next to the database, so one import or match
// run owns it at a time. Durability is relaxed (synchronous=OFF) because a
// failed batch run is recovered by re-running it.
//
// Gazetteer records are submitted as canonical JSON through gaz_raw_view; an
// INSTEAD OF INSERT trigger derives the gaz_meta, gaz_name and gaz_ident_gnd
// rows inside the same statement.
package store
