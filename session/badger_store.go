package session

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerStorage persists sessions in a local badger database so logins
// survive a console restart. It implements fiber.Storage; entry expiry
// is delegated to badger's TTL support.
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage opens (or creates) the session database under dir.
func NewBadgerStorage(dir string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session database")
	}
	return &BadgerStorage{db: db}, nil
}

// Get returns the value for key, or nil when the key is absent or
// expired.
func (s *BadgerStorage) Get(key string) ([]byte, error) {
	var val []byte
	err := s.db.View(
		func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if err != nil {
				return err
			}
			val, err = item.ValueCopy(nil)
			return err
		},
	)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return val, err
}

// Set stores val under key with the given time to live.
func (s *BadgerStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.db.Update(
		func(txn *badger.Txn) error {
			entry := badger.NewEntry([]byte(key), val)
			if exp > 0 {
				entry = entry.WithTTL(exp)
			}
			return txn.SetEntry(entry)
		},
	)
}

// Delete removes key.
func (s *BadgerStorage) Delete(key string) error {
	return s.db.Update(
		func(txn *badger.Txn) error {
			return txn.Delete([]byte(key))
		},
	)
}

// Reset drops all sessions.
func (s *BadgerStorage) Reset() error {
	return s.db.DropAll()
}

// Close closes the underlying database.
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}
