// Package fileutil opens input dumps for streaming (with transparent gzip
// decompression) and writes output files atomically.
package fileutil
