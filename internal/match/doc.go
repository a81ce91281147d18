// Package match recomputes fuzzy match candidates between DNB and Gazetteer
// records for one category at a time.
//
// A run loads the category's text values from both sides, normalizes each
// value once, scores the full cross product with Jaro-Winkler and streams
// qualifying pairs into the store. The previous candidate set of the category
// is replaced in the same transaction, so a run is idempotent and a cancelled
// run leaves the earlier set untouched.
package match
