// Package main hosts the gndmatch CLI entrypoint and command graph.
//
// The Cobra-based command tree imports DNB and Gazetteer dumps into the record
// store, runs fuzzy match passes, exports the results and reports store
// statistics. It centralizes configuration resolution and logging setup so
// subcommands only translate flags into calls on the internal packages.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
