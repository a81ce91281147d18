// Package ingest streams DNB authority dumps (JSON-LD) and Gazetteer dumps
// (JSON) into the record store.
//
// Documents are read element by element with a token-level decoder so memory
// stays bounded by the largest single record, not by the file. Each accepted
// record is committed on its own; malformed and duplicate records are logged,
// counted and skipped, while an undecodable document aborts the import with
// ErrDecode.
package ingest
