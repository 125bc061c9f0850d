package storage

// Backend is the persistence capability injected into the repository core.
// One implementation holds all repository state: the object space, the head
// pointer, and the raw staging index record.
//
// Record semantics shared by all implementations:
//   - objects are write-once; PutObject with an existing hash is a no-op
//   - ReadHead returns "" while no commit exists
//   - ReadIndex returns a zero-length record for a fresh or just-committed
//     repository
//   - CommitState advances the head and clears the staging index as one
//     transition, so a later commit can never pick up staged entries that
//     belonged to an earlier one
type Backend interface {
	// Init creates the repository layout. A layout that already exists
	// fails with AlreadyInitialized.
	Init() error

	// Initialized reports whether Init has run at this location.
	Initialized() (bool, error)

	PutObject(hash string, content []byte) error
	GetObject(hash string) ([]byte, error)
	HasObject(hash string) (bool, error)

	// ListObjects returns the hashes of every stored object.
	ListObjects() ([]string, error)

	ReadHead() (string, error)

	ReadIndex() ([]byte, error)
	WriteIndex(data []byte) error

	// CommitState records head as the new head pointer and clears the
	// staging index in one transition, or as close to one as the medium
	// allows.
	CommitState(head string) error

	Close() error
}
