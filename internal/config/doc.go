// Package config loads, normalizes, and validates gndmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GNDMATCH_DB. The Config type centralizes every knob the importer, matcher,
// and exporter need so the database location, JSON-LD property IRIs, and the
// similarity threshold are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
