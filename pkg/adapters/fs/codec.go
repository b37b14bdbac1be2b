package fs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/wtf/pkg/core"
)

// maxLineSize bounds a single record. Definitions are short, but a corrupted
// file without newlines must not exhaust memory.
const maxLineSize = 1 << 20

// ParseLine decodes a single `term:definition` record. Only the line ending
// is stripped; the definition is everything after the first colon.
// It reports false for blank lines and lines that carry no record.
func ParseLine(line string) (core.Entry, bool) {
	return core.ParseRecord(strings.TrimRight(line, "\r\n"))
}

// FormatLine encodes an entry as one record, newline included.
func FormatLine(e core.Entry) string {
	return e.Term + ":" + e.Definition + "\n"
}

// DecodeEntries reads every record from r in file order.
// Malformed lines are skipped, matching how the files have always been read.
func DecodeEntries(r io.Reader) ([]core.Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	var entries []core.Entry
	for scanner.Scan() {
		if e, ok := ParseLine(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return entries, nil
}

// EncodeEntries renders entries in the on-disk line format.
func EncodeEntries(entries []core.Entry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(FormatLine(e))
	}
	return buf.Bytes()
}
