package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"strata/shared/types"
)

func TestCommitDiffFormat(t *testing.T) {
	cd := &CommitDiff{
		Hash: strings.Repeat("a", 40),
		Commit: &shared.Commit{
			Timestamp: "2024-05-01T10:00:00Z",
			Message:   "tweak greeting",
		},
		Files: []FileDiff{
			{
				Path:   "greeting.txt",
				Status: FileModified,
				Segments: []Segment{
					{Kind: Equal, Text: "hello\n"},
					{Kind: Removed, Text: "world\n"},
					{Kind: Added, Text: "there\n"},
				},
			},
			{Path: "new.txt", Status: FileAdded},
		},
	}

	want := "commit " + cd.Hash + "\n" +
		"Date:   2024-05-01T10:00:00Z\n" +
		"\n" +
		"    tweak greeting\n" +
		"\n" +
		"diff --strata a/greeting.txt b/greeting.txt\n" +
		"  hello\n" +
		"- world\n" +
		"+ there\n" +
		"\n" +
		"diff --strata a/new.txt b/new.txt\n" +
		"new file\n"

	assert.Equal(t, want, cd.Format())
}

func TestCommitDiffFormatInitial(t *testing.T) {
	cd := &CommitDiff{
		Hash:   strings.Repeat("b", 40),
		Commit: &shared.Commit{Timestamp: "2024-05-01T10:00:00Z", Message: "first"},
		Files:  []FileDiff{{Path: "a.txt", Status: FileInitial}},
	}

	out := cd.Format()
	assert.Contains(t, out, "diff --strata a/a.txt b/a.txt\n")
	assert.Contains(t, out, "new file (initial commit)\n")
}

func TestCommitDiffFormatEmptyCommit(t *testing.T) {
	cd := &CommitDiff{
		Hash:   strings.Repeat("c", 40),
		Commit: &shared.Commit{Timestamp: "2024-05-01T10:00:00Z", Message: "checkpoint"},
	}

	want := "commit " + cd.Hash + "\n" +
		"Date:   2024-05-01T10:00:00Z\n" +
		"\n" +
		"    checkpoint\n"

	assert.Equal(t, want, cd.Format())
}

func TestFileDiffFormatMissingTerminator(t *testing.T) {
	cd := &CommitDiff{
		Hash:   strings.Repeat("d", 40),
		Commit: &shared.Commit{Timestamp: "2024-05-01T10:00:00Z", Message: "tail"},
		Files: []FileDiff{
			{
				Path:     "notes.txt",
				Status:   FileModified,
				Segments: []Segment{{Kind: Added, Text: "tail"}},
			},
		},
	}

	assert.Contains(t, cd.Format(), "+ tail\n")
}
