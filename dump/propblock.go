package dump

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/propset"
)

// parsePropertyBlock decodes a raw K/V/D/PROPS-END block (spec §4.D). Name
// and value bytes are sliced directly out of raw by declared length, never
// by scanning for a delimiter, so binary content never confuses the parser.
func parsePropertyBlock(raw []byte) (*propset.Set, error) {
	set := propset.New()
	pos := 0
	for {
		line, next, err := rawLine(raw, pos)
		if err != nil {
			return nil, err
		}
		pos = next
		if line == "PROPS-END" {
			return set, nil
		}
		switch {
		case strings.HasPrefix(line, "K "):
			name, p, err := rawField(raw, pos, line[2:])
			if err != nil {
				return nil, err
			}
			pos = p
			vline, p2, err := rawLine(raw, pos)
			if err != nil {
				return nil, err
			}
			pos = p2
			if !strings.HasPrefix(vline, "V ") {
				return nil, dumperr.New(dumperr.BadFormat, "dump: expected V after K")
			}
			value, p3, err := rawField(raw, pos, vline[2:])
			if err != nil {
				return nil, err
			}
			pos = p3
			set.Set(name, value)
		case strings.HasPrefix(line, "D "):
			name, p, err := rawField(raw, pos, line[2:])
			if err != nil {
				return nil, err
			}
			pos = p
			set.Tombstone(name)
		default:
			return nil, dumperr.New(dumperr.BadFormat, "dump: illegal property-block prefix")
		}
	}
}

// rawLine reads raw[pos:] up to the next '\n', returning the line (without
// the newline) and the position just past it.
func rawLine(raw []byte, pos int) (string, int, error) {
	idx := bytes.IndexByte(raw[pos:], '\n')
	if idx < 0 {
		return "", 0, dumperr.New(dumperr.Truncated, "dump: property block cut short")
	}
	return string(raw[pos : pos+idx]), pos + idx + 1, nil
}

// rawField reads the n-byte field declared by lenStr, plus its trailing
// newline, returning the field text and the position just past it.
func rawField(raw []byte, pos int, lenStr string) (string, int, error) {
	n, err := strconv.Atoi(lenStr)
	if err != nil || n < 0 {
		return "", 0, dumperr.New(dumperr.BadFormat, "dump: malformed property length")
	}
	if pos+n > len(raw) {
		return "", 0, dumperr.New(dumperr.Truncated, "dump: property field exceeds block")
	}
	field := string(raw[pos : pos+n])
	pos += n
	if pos >= len(raw) || raw[pos] != '\n' {
		return "", 0, dumperr.New(dumperr.BadFormat, "dump: property field missing trailing newline")
	}
	return field, pos + 1, nil
}

// renderPropertyBlock is the exact inverse of parsePropertyBlock (spec §4.E
// "Property rendering"): set entries as K/V pairs, tombstones as D entries,
// in the set's insertion order, terminated by PROPS-END.
func renderPropertyBlock(set *propset.Set) []byte {
	var buf bytes.Buffer
	if set != nil {
		set.Each(func(e propset.Entry) {
			if e.Deleted {
				fmt.Fprintf(&buf, "D %d\n%s\n", len(e.Name), e.Name)
				return
			}
			fmt.Fprintf(&buf, "K %d\n%s\n", len(e.Name), e.Name)
			fmt.Fprintf(&buf, "V %d\n%s\n", len(e.Value), e.Value)
		})
	}
	buf.WriteString("PROPS-END\n")
	return buf.Bytes()
}
