package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// objectStream yields the leaf elements of a JSON document one at a time.
//
// A document starting with '[' is read as an array whose elements are
// yielded in order; elements that are themselves arrays are flattened, which
// covers the DNB dump layout of one array of nodes per record. Any other
// document is read as a sequence of whitespace or newline separated values.
type objectStream struct {
	dec     *json.Decoder
	array   bool
	done    bool
	pending []json.RawMessage
	index   int
}

func newObjectStream(r io.Reader) (*objectStream, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrDecode)
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()
	s := &objectStream{dec: dec}
	if first == '[' {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		s.array = true
	}
	return s, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

// Next returns the next leaf element and its zero-based position. It returns
// io.EOF once the document is exhausted and an ErrDecode wrapped error when
// the document is not valid JSON.
func (s *objectStream) Next() (json.RawMessage, int, error) {
	for {
		if len(s.pending) > 0 {
			raw := s.pending[0]
			s.pending = s.pending[1:]
			if firstByte(raw) == '[' {
				var inner []json.RawMessage
				if err := json.Unmarshal(raw, &inner); err != nil {
					return nil, s.index, fmt.Errorf("%w: element %d: %w", ErrDecode, s.index, err)
				}
				s.pending = append(inner, s.pending...)
				continue
			}
			idx := s.index
			s.index++
			return raw, idx, nil
		}
		if s.done {
			return nil, s.index, io.EOF
		}

		if s.array && !s.dec.More() {
			if _, err := s.dec.Token(); err != nil {
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				return nil, s.index, fmt.Errorf("%w: %w", ErrDecode, err)
			}
			if _, err := s.dec.Token(); !errors.Is(err, io.EOF) {
				return nil, s.index, fmt.Errorf("%w: unexpected data after top-level array", ErrDecode)
			}
			s.done = true
			continue
		}

		var raw json.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			if !s.array && errors.Is(err, io.EOF) {
				s.done = true
				continue
			}
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, s.index, fmt.Errorf("%w: element %d: %w", ErrDecode, s.index, err)
		}
		s.pending = append(s.pending, raw)
	}
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
