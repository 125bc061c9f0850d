// internal/diff/render.go
package diff

import (
	"bytes"
	"fmt"
	"strings"

	"strata/shared/types"
)

// FileStatus describes how a file figures in a commit relative to the
// commit's parent.
type FileStatus string

const (
	// FileInitial marks a file recorded by a root commit.
	FileInitial FileStatus = "initial"
	// FileAdded marks a path with no matching entry in the parent commit.
	FileAdded FileStatus = "added"
	// FileModified marks a path matched against the parent commit.
	FileModified FileStatus = "modified"
)

// FileDiff is one file's change within a commit. Segments is populated for
// FileModified only; initial and added files have nothing to compare
// against.
type FileDiff struct {
	Path     string
	Status   FileStatus
	Segments []Segment
}

// CommitDiff is a commit resolved against its parent, file by file.
type CommitDiff struct {
	Hash   string
	Commit *shared.Commit
	Files  []FileDiff
}

// Format renders the commit header followed by each file's changes in
// prefixed line form: "+ " added, "- " removed, "  " unchanged. Coloring
// is left to the caller.
func (cd *CommitDiff) Format() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "commit %s\n", cd.Hash)
	fmt.Fprintf(&buf, "Date:   %s\n", cd.Commit.Timestamp)
	fmt.Fprintf(&buf, "\n    %s\n", cd.Commit.Message)

	for i := range cd.Files {
		buf.WriteString("\n")
		cd.Files[i].format(&buf)
	}

	return buf.String()
}

func (d *FileDiff) format(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "diff --strata a/%s b/%s\n", d.Path, d.Path)

	switch d.Status {
	case FileInitial:
		buf.WriteString("new file (initial commit)\n")
		return
	case FileAdded:
		buf.WriteString("new file\n")
		return
	}

	for _, seg := range d.Segments {
		prefix := "  "
		switch seg.Kind {
		case Added:
			prefix = "+ "
		case Removed:
			prefix = "- "
		}
		for _, line := range strings.Split(strings.TrimSuffix(seg.Text, "\n"), "\n") {
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
}
