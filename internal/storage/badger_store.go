// internal/storage/badger_store.go
package storage

import (
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"strata/internal/errors"
)

// BadgerDir is the database directory under the repository root.
const BadgerDir = "db"

// Badger key space. Objects get one key each; head and index are single
// records.
const (
	badgerObjectPrefix = "object:"
	badgerHeadKey      = "head"
	badgerIndexKey     = "index"
	badgerInitKey      = "repo:init"
)

// BadgerBackend stores repository state in a BadgerDB database. Unlike the
// file layout it moves the head pointer and clears the staging index in a
// single transaction.
type BadgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend wraps an already open database. Close closes it.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

// OpenBadgerBackend opens, creating if needed, the database under root/db.
func OpenBadgerBackend(root string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(filepath.Join(root, BadgerDir))
	opts.Logger = nil // Disable logging noise

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.IOFailure(err, "opening database")
	}
	return &BadgerBackend{db: db}, nil
}

func badgerObjectKey(hash string) []byte {
	return []byte(badgerObjectPrefix + hash)
}

func (b *BadgerBackend) Init() error {
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerInitKey))
		if err == nil {
			return errors.AlreadyInitialized("repository already initialized")
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set([]byte(badgerInitKey), []byte("1"))
	})
	return ioWrap(err, "initializing repository")
}

func (b *BadgerBackend) Initialized() (bool, error) {
	var ok bool
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerInitKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return false, errors.IOFailure(err, "checking repository state")
	}
	return ok, nil
}

func (b *BadgerBackend) PutObject(hash string, content []byte) error {
	key := badgerObjectKey(hash)
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // objects are immutable, first write wins
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, content)
	})
	return ioWrap(err, "storing object "+hash)
}

func (b *BadgerBackend) GetObject(hash string) ([]byte, error) {
	var content []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerObjectKey(hash))
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.NotFound("no such object: %s", hash)
	}
	if err != nil {
		return nil, errors.IOFailure(err, "reading object "+hash)
	}
	return content, nil
}

func (b *BadgerBackend) HasObject(hash string) (bool, error) {
	var ok bool
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerObjectKey(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return false, errors.IOFailure(err, "checking object "+hash)
	}
	return ok, nil
}

func (b *BadgerBackend) ListObjects() ([]string, error) {
	var hashes []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerObjectPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			hashes = append(hashes, strings.TrimPrefix(key, badgerObjectPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, errors.IOFailure(err, "listing objects")
	}
	return hashes, nil
}

func (b *BadgerBackend) ReadHead() (string, error) {
	var head string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerHeadKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		head = strings.TrimSpace(string(val))
		return nil
	})
	if err != nil {
		return "", errors.IOFailure(err, "reading head")
	}
	return head, nil
}

func (b *BadgerBackend) ReadIndex() ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerIndexKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.IOFailure(err, "reading staging index")
	}
	return data, nil
}

func (b *BadgerBackend) WriteIndex(data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerIndexKey), data)
	})
	return ioWrap(err, "writing staging index")
}

// CommitState runs as a single transaction; the head move and the index
// clear become visible together.
func (b *BadgerBackend) CommitState(head string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(badgerHeadKey), []byte(head)); err != nil {
			return err
		}
		return txn.Set([]byte(badgerIndexKey), nil)
	})
	return ioWrap(err, "recording commit state")
}

func (b *BadgerBackend) Close() error {
	if err := b.db.Close(); err != nil {
		return errors.IOFailure(err, "closing database")
	}
	return nil
}

// ioWrap passes already classified errors through and wraps raw storage
// errors as IOFailure.
func ioWrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	return errors.IOFailure(err, "%s", msg)
}
