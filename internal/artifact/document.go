package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Region markers. Each must appear exactly once, alone on its line, in this
// order.
const (
	MarkerGeneratedBegin = "// agreed:generated:begin"
	MarkerGeneratedEnd   = "// agreed:generated:end"
	MarkerManualBegin    = "// agreed:manual:begin"
	MarkerManualEnd      = "// agreed:manual:end"
)

var markers = []string{
	MarkerGeneratedBegin,
	MarkerGeneratedEnd,
	MarkerManualBegin,
	MarkerManualEnd,
}

// Errors returned by Parse.
var (
	ErrNoMarkers = errors.New("artifact: region markers not found")
	ErrMalformed = errors.New("artifact: region markers malformed")
)

// Document is a parsed artifact.
type Document struct {
	// Generated is the text before the manual-begin marker line.
	Generated string

	// Manual is the text between the manual markers, verbatim.
	Manual string

	// Hash is the content hash of Generated.
	Hash string
}

// Hash returns the content hash of generated text.
func Hash(generated string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(generated))
}

// Parse splits an existing artifact into its regions. It returns ErrNoMarkers
// when no marker is present and ErrMalformed when markers are missing,
// repeated, or out of order.
func Parse(data []byte) (*Document, error) {
	// starts[i] is the byte offset of marker i's line, ends[i] the offset just
	// past its line terminator.
	starts := make([]int, len(markers))
	ends := make([]int, len(markers))
	counts := make([]int, len(markers))

	offset := 0
	for offset < len(data) {
		lineEnd := bytes.IndexByte(data[offset:], '\n')
		next := len(data)
		if lineEnd >= 0 {
			next = offset + lineEnd + 1
			lineEnd = offset + lineEnd
		} else {
			lineEnd = len(data)
		}

		line := strings.TrimRight(string(data[offset:lineEnd]), " \t\r")
		for i, marker := range markers {
			if line == marker {
				counts[i]++
				starts[i] = offset
				ends[i] = next
			}
		}
		offset = next
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil, ErrNoMarkers
	}
	for i, c := range counts {
		if c != 1 {
			return nil, fmt.Errorf("%w: %q appears %d times", ErrMalformed, markers[i], c)
		}
	}
	for i := 1; i < len(markers); i++ {
		if starts[i] < starts[i-1] {
			return nil, fmt.Errorf("%w: %q before %q", ErrMalformed, markers[i], markers[i-1])
		}
	}

	generated := string(data[:starts[2]])
	return &Document{
		Generated: generated,
		Manual:    string(data[ends[2]:starts[3]]),
		Hash:      Hash(generated),
	}, nil
}

// Compose assembles an artifact from generated text and a manual region.
// The manual region is written verbatim; a non-empty region without a
// trailing newline gets one so the end marker stays on its own line.
func Compose(generated, manual string) []byte {
	var b bytes.Buffer
	b.Grow(len(generated) + len(manual) + len(MarkerManualBegin) + len(MarkerManualEnd) + 2)
	b.WriteString(generated)
	b.WriteString(MarkerManualBegin)
	b.WriteByte('\n')
	b.WriteString(manual)
	if manual != "" && !strings.HasSuffix(manual, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(MarkerManualEnd)
	b.WriteByte('\n')
	return b.Bytes()
}
