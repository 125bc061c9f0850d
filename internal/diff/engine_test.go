package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// reconstruct rebuilds one side of a diff: Equal plus keep, in order.
func reconstruct(segments []Segment, keep SegmentKind) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind == Equal || seg.Kind == keep {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func TestCompareAppendLine(t *testing.T) {
	segments := NewEngine().Compare("hello\n", "hello\nworld\n")

	assert.Equal(t, []Segment{
		{Kind: Equal, Text: "hello\n"},
		{Kind: Added, Text: "world\n"},
	}, segments)
}

func TestCompareIdentical(t *testing.T) {
	text := "a\nb\nc\n"
	segments := NewEngine().Compare(text, text)

	assert.Equal(t, []Segment{{Kind: Equal, Text: text}}, segments)
}

func TestCompareBothEmpty(t *testing.T) {
	assert.Empty(t, NewEngine().Compare("", ""))
}

func TestCompareFromEmpty(t *testing.T) {
	segments := NewEngine().Compare("", "a\nb\n")

	assert.Equal(t, []Segment{{Kind: Added, Text: "a\nb\n"}}, segments)
}

func TestCompareToEmpty(t *testing.T) {
	segments := NewEngine().Compare("a\nb\n", "")

	assert.Equal(t, []Segment{{Kind: Removed, Text: "a\nb\n"}}, segments)
}

func TestCompareReplaceLine(t *testing.T) {
	segments := NewEngine().Compare("a\nb\nc\n", "a\nx\nc\n")

	assert.Equal(t, []Segment{
		{Kind: Equal, Text: "a\n"},
		{Kind: Removed, Text: "b\n"},
		{Kind: Added, Text: "x\n"},
		{Kind: Equal, Text: "c\n"},
	}, segments)
}

func TestCompareRemoveMiddleLine(t *testing.T) {
	segments := NewEngine().Compare("a\nb\nc\n", "a\nc\n")

	assert.Equal(t, []Segment{
		{Kind: Equal, Text: "a\n"},
		{Kind: Removed, Text: "b\n"},
		{Kind: Equal, Text: "c\n"},
	}, segments)
}

func TestCompareNoTrailingNewline(t *testing.T) {
	segments := NewEngine().Compare("a\nb", "a\nc")

	assert.Equal(t, []Segment{
		{Kind: Equal, Text: "a\n"},
		{Kind: Removed, Text: "b"},
		{Kind: Added, Text: "c"},
	}, segments)

	assert.Equal(t, "a\nb", reconstruct(segments, Removed))
	assert.Equal(t, "a\nc", reconstruct(segments, Added))
}

// TestProperty_CompareRoundTrip verifies the reconstruction contract over
// arbitrary line suites: the old text is exactly the Equal and Removed
// segments in order, the new text exactly the Equal and Added ones.
func TestProperty_CompareRoundTrip(t *testing.T) {
	engine := NewEngine()

	vocab := []string{"alpha\n", "beta\n", "gamma\n", "delta\n", "\n", "tail"}
	lineSuite := rapid.SliceOfN(rapid.SampledFrom(vocab), 0, 12)

	rapid.Check(t, func(t *rapid.T) {
		oldText := strings.Join(lineSuite.Draw(t, "oldLines"), "")
		newText := strings.Join(lineSuite.Draw(t, "newLines"), "")

		segments := engine.Compare(oldText, newText)

		require.Equal(t, oldText, reconstruct(segments, Removed))
		require.Equal(t, newText, reconstruct(segments, Added))

		for _, seg := range segments {
			require.NotEmpty(t, seg.Text)
		}
	})
}
