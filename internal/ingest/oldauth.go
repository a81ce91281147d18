package ingest

import (
	"strings"

	"gndmatch/internal/store"
)

// ParseOldAuthority splits a legacy authority number of the form
// "(prefix)value". The opening parenthesis must be the first character and
// the prefix must not be empty; any other value keeps only the raw number.
func ParseOldAuthority(raw string) store.OldAuthority {
	old := store.OldAuthority{Number: raw}
	open := strings.IndexByte(raw, '(')
	closing := strings.IndexByte(raw, ')')
	if open == 0 && closing > 1 {
		prefix := raw[1:closing]
		gndID := raw[closing+1:]
		old.Prefix = &prefix
		old.GNDID = &gndID
	}
	return old
}
