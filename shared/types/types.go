package shared

// Entry is a single staged or committed file reference.
type Entry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Commit is one immutable point in repository history. Parent is the hash
// of the previous commit, or empty for the root commit.
type Commit struct {
	Timestamp string  `json:"timestamp"`
	Message   string  `json:"message"`
	Files     []Entry `json:"files"`
	Parent    string  `json:"parent"`
}

// LogEntry is the commit metadata yielded while walking history. File lists
// are intentionally left out.
type LogEntry struct {
	Hash      string `json:"hash"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Parent    string `json:"parent"`
}

// StatusEntry describes one working-tree path relative to the staging index
// and the head commit.
type StatusEntry struct {
	Path  string `json:"path"`
	State string `json:"state"`
}

// States reported for a StatusEntry.
const (
	StateStaged    = "staged"
	StateModified  = "modified"
	StateUntracked = "untracked"
	StateDeleted   = "deleted"
)
