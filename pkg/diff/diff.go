package diff

import (
	"errors"
	"fmt"
	"strings"
)

const (
	markerSearch  = "<<<<<<< SEARCH"
	markerDivider = "======="
	markerReplace = ">>>>>>> REPLACE"
)

// ErrNoHunks is returned when the diff text contains no hunks at all.
// Model output without a single search/replace block is malformed.
var ErrNoHunks = errors.New("diff contains no hunks")

// SearchNotFoundError reports a hunk whose search block could not be
// located in the current document state. Block holds the search block
// verbatim to aid debugging of model output.
type SearchNotFoundError struct {
	Block string
}

func (e *SearchNotFoundError) Error() string {
	return fmt.Sprintf("search block not found in document:\n%s", e.Block)
}

// Hunk is one search/replace unit. Replace may be empty (pure deletion);
// Search never is.
type Hunk struct {
	Search  []string
	Replace []string
}

// StripFences removes a fenced code-block wrapper (``` or ```diff etc.)
// surrounding the whole diff text, if present. Models routinely wrap
// their output this way.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	lines := splitLines(trimmed)
	// Drop the opening fence line (which may carry a language tag).
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}

// Parse extracts the ordered hunk sequence from diff text. Marker lines
// prefixed with a backslash are treated as escaped block content: the
// backslash is stripped and the marker text kept literally.
func Parse(text string) ([]Hunk, error) {
	const (
		outside = iota
		inSearch
		inReplace
	)

	var (
		hunks   []Hunk
		current Hunk
		state   = outside
	)

	for _, line := range splitLines(text) {
		switch state {
		case outside:
			if line == markerSearch {
				current = Hunk{}
				state = inSearch
			}
			// Anything between hunks (blank lines, prose) is ignored.
		case inSearch:
			switch line {
			case markerDivider:
				state = inReplace
			case markerSearch, markerReplace:
				return nil, fmt.Errorf("hunk %d: unexpected marker %q in search block", len(hunks)+1, line)
			default:
				current.Search = append(current.Search, unescape(line))
			}
		case inReplace:
			switch line {
			case markerReplace:
				if len(current.Search) == 0 {
					return nil, fmt.Errorf("hunk %d: empty search block", len(hunks)+1)
				}
				hunks = append(hunks, current)
				state = outside
			case markerSearch, markerDivider:
				return nil, fmt.Errorf("hunk %d: unexpected marker %q in replace block", len(hunks)+1, line)
			default:
				current.Replace = append(current.Replace, unescape(line))
			}
		}
	}

	if state != outside {
		return nil, fmt.Errorf("hunk %d: unterminated", len(hunks)+1)
	}
	if len(hunks) == 0 {
		return nil, ErrNoHunks
	}
	return hunks, nil
}

// Apply patches original with the given diff text. It strips a fenced
// wrapper, parses the hunks and applies them in order against the
// evolving line sequence. On any failure the original is left untouched
// and an error is returned; a missing search block yields a
// *SearchNotFoundError naming the block.
func Apply(original, diffText string) (string, error) {
	hunks, err := Parse(StripFences(diffText))
	if err != nil {
		return "", err
	}
	return ApplyHunks(original, hunks)
}

// ApplyHunks applies pre-parsed hunks to original. Each hunk's search
// block is matched against the current (possibly already patched) line
// sequence, top to bottom, first exact contiguous run of whole lines
// wins. If no whole-line run matches, the block is retried as a raw
// substring of the document, so a block like "1,2,3" still patches the
// single-line document {"nodes":[1,2,3]}. Output lines are joined with a
// single "\n".
func ApplyHunks(original string, hunks []Hunk) (string, error) {
	lines := splitLines(original)

	for _, hunk := range hunks {
		idx := indexOfBlock(lines, hunk.Search)
		if idx >= 0 {
			patched := make([]string, 0, len(lines)-len(hunk.Search)+len(hunk.Replace))
			patched = append(patched, lines[:idx]...)
			patched = append(patched, hunk.Replace...)
			patched = append(patched, lines[idx+len(hunk.Search):]...)
			lines = patched
			continue
		}

		// Substring fallback for matches that start or end mid-line.
		doc := strings.Join(lines, "\n")
		needle := strings.Join(hunk.Search, "\n")
		pos := strings.Index(doc, needle)
		if pos < 0 {
			return "", &SearchNotFoundError{Block: needle}
		}
		doc = doc[:pos] + strings.Join(hunk.Replace, "\n") + doc[pos+len(needle):]
		lines = splitLines(doc)
	}

	return strings.Join(lines, "\n"), nil
}

// indexOfBlock returns the index of the first contiguous run in lines
// equal to block, line for line, or -1. Comparison is exact: order and
// case sensitive, no normalization.
func indexOfBlock(lines, block []string) int {
	for i := 0; i+len(block) <= len(lines); i++ {
		match := true
		for j, want := range block {
			if lines[i+j] != want {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func unescape(line string) string {
	if rest, ok := strings.CutPrefix(line, `\`); ok {
		switch rest {
		case markerSearch, markerDivider, markerReplace:
			return rest
		}
	}
	return line
}

// splitLines splits on "\n" after normalizing CRLF line terminators.
func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
