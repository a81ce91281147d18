package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// gazPayload validates one Gazetteer element and returns its gazId and the
// compacted document submitted to the store. Number literals keep their exact
// textual form.
func gazPayload(raw json.RawMessage) (string, []byte, error) {
	if firstByte(raw) != '{' {
		return "", nil, fmt.Errorf("%w: expected object", ErrMalformed)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	id, err := gazID(fields["gazId"])
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(raw))
	if err := json.Compact(&buf, raw); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return id, buf.Bytes(), nil
}

func gazID(raw json.RawMessage) (string, error) {
	switch firstByte(raw) {
	case 0:
		return "", fmt.Errorf("%w: missing gazId", ErrMalformed)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: gazId: %w", ErrMalformed, err)
		}
		if strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("%w: empty gazId", ErrMalformed)
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("%w: gazId: %w", ErrMalformed, err)
		}
		return n.String(), nil
	default:
		return "", fmt.Errorf("%w: gazId must be a string or number", ErrMalformed)
	}
}
