package dump

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/grazhopper/svndumptool/dumperr"
)

// lineScanner walks a dump file byte by byte, tracking the absolute file
// offset and line number needed for range-style text references and
// BadFormat/Truncated diagnostics (spec §4.D). It buffers ahead for
// efficiency but never hides more than 4KiB of read-ahead from offset(),
// so skip() can fast-path large text blocks with a single Seek instead of
// byte-at-a-time consumption.
type lineScanner struct {
	f        *os.File
	buf      []byte
	pos      int
	consumed int64
	line     int
}

func newLineScanner(f *os.File) *lineScanner {
	return &lineScanner{f: f, line: 1}
}

func (s *lineScanner) offset() int64 { return s.consumed }

func (s *lineScanner) fill() error {
	if s.pos < len(s.buf) {
		return nil
	}
	tmp := make([]byte, 4096)
	n, err := s.f.Read(tmp)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return err
	}
	s.buf = tmp[:n]
	s.pos = 0
	return nil
}

func (s *lineScanner) readByte() (byte, error) {
	if err := s.fill(); err != nil {
		return 0, err
	}
	b := s.buf[s.pos]
	s.pos++
	s.consumed++
	if b == '\n' {
		s.line++
	}
	return b, nil
}

// readLine reads up to and including the next '\n', returning the line
// without its terminator. Returns io.EOF only when no bytes at all were
// available (a record ending mid-line is reported by the caller as Truncated).
func (s *lineScanner) readLine() (string, error) {
	var buf bytes.Buffer
	for {
		b, err := s.readByte()
		if err != nil {
			if err == io.EOF && buf.Len() > 0 {
				return "", dumperr.New(dumperr.Truncated, "dump.lineScanner.readLine")
			}
			return "", err
		}
		if b == '\n' {
			return buf.String(), nil
		}
		buf.WriteByte(b)
	}
}

// readRaw reads exactly n bytes without any line interpretation.
func (s *lineScanner) readRaw(n int64) ([]byte, error) {
	out := make([]byte, n)
	var i int64
	for i < n {
		if err := s.fill(); err != nil {
			return nil, err
		}
		avail := int64(len(s.buf) - s.pos)
		take := n - i
		if take > avail {
			take = avail
		}
		copy(out[i:i+take], s.buf[s.pos:s.pos+int(take)])
		s.pos += int(take)
		s.consumed += take
		i += take
	}
	return out, nil
}

// skip discards n bytes, seeking past buffered read-ahead rather than
// copying it, so multi-megabyte text blocks never get materialized (spec §1).
func (s *lineScanner) skip(n int64) error {
	avail := int64(len(s.buf) - s.pos)
	if avail >= n {
		s.pos += int(n)
		s.consumed += n
		return nil
	}
	n -= avail
	s.pos = 0
	s.buf = nil
	s.consumed += avail
	if _, err := s.f.Seek(n, io.SeekCurrent); err != nil {
		return err
	}
	s.consumed += n
	return nil
}

func parseHeaderInt(headers map[string]string, key string) (int, error) {
	v, ok := headers[key]
	if !ok {
		return 0, dumperr.New(dumperr.BadFormat, "dump: missing "+key)
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, dumperr.New(dumperr.BadFormat, "dump: malformed "+key)
	}
	return n, nil
}
