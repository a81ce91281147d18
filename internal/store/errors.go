package store

import (
	"errors"
	"strings"
)

var (
	// ErrStoreUnavailable reports that the database could not be opened or its
	// schema is missing or incompatible. Runs abort before doing any work.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrLocked reports that another run holds the database lock.
	ErrLocked = errors.New("record store is locked by another run")
	// ErrDuplicateKey reports that a record identifier already exists.
	ErrDuplicateKey = errors.New("duplicate record id")
	// ErrUnknownCategory reports a category other than meta or name.
	ErrUnknownCategory = errors.New("unknown match category")
)

const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		switch coder.Code() {
		case sqliteConstraintPrimaryKey, sqliteConstraintUnique:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY constraint failed")
}
