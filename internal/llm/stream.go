package llm

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const (
	dataPrefix = "data: "
	doneToken  = "[DONE]"

	maxLineSize = 1 << 20
)

// Stream is a forward-only sequence of completion chunks read from an SSE
// body. It is finite and cannot be restarted; issue a new request to stream
// again.
//
//	for s.Next() {
//		chunk := s.Current()
//	}
//	if err := s.Err(); err != nil { ... }
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	convert func(wireCompletion) *Completion

	cur  *Completion
	err  error
	done bool
}

func newStream(body io.ReadCloser, convert func(wireCompletion) *Completion) *Stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Stream{body: body, scanner: sc, convert: convert}
}

// Next advances to the next chunk. It returns false at [DONE], at the end of
// the body, or on a read error. Lines that are not valid JSON are skipped.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		line = bytes.TrimPrefix(line, []byte(dataPrefix))
		if string(line) == doneToken {
			s.finish(nil)
			return false
		}
		var w wireCompletion
		if err := json.Unmarshal(line, &w); err != nil {
			continue
		}
		s.cur = s.convert(w)
		return true
	}
	if err := s.scanner.Err(); err != nil {
		s.finish(transportError(fmt.Errorf("read stream: %w", err)))
		return false
	}
	s.finish(nil)
	return false
}

// Current returns the chunk produced by the last successful Next.
func (s *Stream) Current() *Completion { return s.cur }

// Err returns the first read error, if any.
func (s *Stream) Err() error { return s.err }

// Close releases the underlying connection. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.body == nil {
		return nil
	}
	err := s.body.Close()
	s.body = nil
	return err
}

func (s *Stream) finish(err error) {
	s.done = true
	s.cur = nil
	s.err = err
	_ = s.Close()
}
