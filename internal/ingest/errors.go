package ingest

import "errors"

var (
	// ErrDecode reports that the source document is not valid JSON. It aborts
	// the import; records committed before the failure point stay committed.
	ErrDecode = errors.New("decode source document")
	// ErrMalformed reports a record lacking a required identifying field. The
	// record is skipped and the import continues.
	ErrMalformed = errors.New("malformed record")
	// errForeign marks a DNB node outside the authority namespace, such as the
	// "/about" description node that accompanies every record.
	errForeign = errors.New("node outside authority namespace")
)
