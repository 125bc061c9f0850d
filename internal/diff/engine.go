// internal/diff/engine.go
package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// SegmentKind classifies a run of lines in an edit script.
type SegmentKind int

const (
	Equal SegmentKind = iota
	Added
	Removed
)

// String returns the lowercase name of the kind.
func (k SegmentKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "equal"
	}
}

// Segment is a run of whole lines sharing one classification. Text keeps
// its line terminators, so concatenating segments reproduces exact input
// bytes: Equal plus Removed segments in order rebuild the old text, Equal
// plus Added rebuild the new one.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Engine computes line-level edit scripts between two texts.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	// Unlimited time keeps the script exact; the bounded default may stop
	// early and settle for a coarser script.
	dmp.DiffTimeout = 0
	return &Engine{dmp: dmp}
}

// Compare returns the edit script from oldText to newText. Granularity is
// whole lines, terminators included; no intra-line diffing and no cleanup
// passes, which could merge segments across line boundaries.
func (e *Engine) Compare(oldText, newText string) []Segment {
	c1, c2, lines := e.dmp.DiffLinesToChars(oldText, newText)
	diffs := e.dmp.DiffMain(c1, c2, false)
	diffs = e.dmp.DiffCharsToLines(diffs, lines)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		segments = append(segments, Segment{Kind: kindOf(d.Type), Text: d.Text})
	}
	return segments
}

func kindOf(op diffmatchpatch.Operation) SegmentKind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return Added
	case diffmatchpatch.DiffDelete:
		return Removed
	default:
		return Equal
	}
}
