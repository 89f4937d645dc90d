package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Summary counts line-level changes between two documents.
type Summary struct {
	Added   int
	Removed int
}

// Summarize compares a document before and after patching and reports how
// many lines were added and removed. Used for change-summary progress
// events and CLI output; it never affects patching itself.
func Summarize(before, after string) Summary {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sum Summary
	for _, d := range diffs {
		n := lineCount(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sum.Added += n
		case diffmatchpatch.DiffDelete:
			sum.Removed += n
		}
	}
	return sum
}

func lineCount(chunk string) int {
	if chunk == "" {
		return 0
	}
	n := strings.Count(chunk, "\n")
	if !strings.HasSuffix(chunk, "\n") {
		n++
	}
	return n
}
