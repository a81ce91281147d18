// Package textutil provides the text normalization and string similarity
// primitives used to compare authority titles.
//
// Normalize reduces a raw title to a canonical comparable form: composed
// Unicode, case folded, transliterated to ASCII and with collapsed whitespace.
// JaroWinkler scores two normalized strings in [0,1]. Both are pure functions
// and safe for concurrent use.
package textutil
