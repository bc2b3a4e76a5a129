package blame

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// lineFate records, for one line of an origin's content, whether that
// line also exists (unchanged) in the parent being compared against —
// and if so, which parent line it corresponds to.
type lineFate struct {
	equal bool
	pLine int
}

// diffFate line-diffs oLines against pLines (sergi/go-diff, the same
// Myers-diff engine the pack's other textual-diff consumers use) and
// returns one fate per line of oLines, in order.
func diffFate(oLines, pLines []string) []lineFate {
	dmp := diffmatchpatch.New()
	a, b, arr := dmp.DiffLinesToChars(joinLines(oLines), joinLines(pLines))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), arr)

	fate := make([]lineFate, 0, len(oLines))
	pCursor := 0
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for i := 0; i < n; i++ {
				fate = append(fate, lineFate{equal: true, pLine: pCursor})
				pCursor++
			}
		case diffmatchpatch.DiffDelete:
			for i := 0; i < n; i++ {
				fate = append(fate, lineFate{equal: false})
			}
		case diffmatchpatch.DiffInsert:
			pCursor += n
		}
	}
	return fate
}

// countLines counts the lines in a diff chunk; every line of a chunk
// carries its terminating '\n' (see joinLines).
func countLines(text string) int {
	return strings.Count(text, "\n")
}

// joinLines terminates every line with '\n', so the last line of a file
// is compared the same way as any other line.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// run is one maximal contiguous stretch of fate entries sharing the
// same verdict — an "equal" run maps onto a contiguous range of the
// parent's lines (pLine increasing by exactly one per line); a
// "changed" run has no parent correspondent at all.
type run struct {
	equal         bool
	length        int
	startOriginal int
	startP        int
}

func splitRuns(fate []lineFate, start, length int) []run {
	var runs []run
	i := 0
	for i < length {
		f := fate[start+i]
		j := i + 1
		if f.equal {
			for j < length && fate[start+j].equal && fate[start+j].pLine == fate[start+j-1].pLine+1 {
				j++
			}
		} else {
			for j < length && !fate[start+j].equal {
				j++
			}
		}
		runs = append(runs, run{equal: f.equal, length: j - i, startOriginal: start + i, startP: f.pLine})
		i = j
	}
	return runs
}
