package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/facebookgo/atomicfile"
	"github.com/pkg/errors"

	"github.com/brandyscotchland/timminet/storage/model"
)

const accountsFileName = "users.json"

// FileAccountStorage implements model.AccountStore on top of a single
// JSON file. All writes go through a temp-file-and-rename so a
// concurrent reader sees either the pre- or post-state, never a partial
// table. A RWMutex serializes the load-mutate-save cycle.
type FileAccountStorage struct {
	mu   sync.RWMutex
	path string
}

// NewFileAccountStorage returns a FileAccountStorage storing the account
// table under dataDir, creating the directory if needed.
func NewFileAccountStorage(dataDir string) (*FileAccountStorage, error) {
	if dataDir == "" {
		return nil, errors.New("file storage: data dir must be specified")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create data dir")
	}
	return &FileAccountStorage{path: filepath.Join(dataDir, accountsFileName)}, nil
}

// fileAccount is the on-disk representation; unlike the API form it
// carries the password hash.
type fileAccount struct {
	model.Account
	PasswordHash string `json:"password_hash"`
}

func (s *FileAccountStorage) write(table map[string]model.Account) error {
	onDisk := make(map[string]fileAccount, len(table))
	for name, a := range table {
		onDisk[name] = fileAccount{Account: a, PasswordHash: a.PasswordHash}
	}
	data, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return model.StorageFailure(err, "failed to encode account table")
	}
	f, err := atomicfile.New(s.path, 0o600)
	if err != nil {
		return model.StorageFailure(err, "failed to open account table for writing")
	}
	if _, err = f.Write(data); err != nil {
		_ = f.Abort()
		return model.StorageFailure(err, "failed to write account table")
	}
	return model.StorageFailure(f.Close(), "failed to replace account table")
}

func (s *FileAccountStorage) readDecoded() (map[string]model.Account, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// An absent table is an empty table.
			return map[string]model.Account{}, nil
		}
		return nil, model.StorageFailure(err, "failed to read account table")
	}
	onDisk := map[string]fileAccount{}
	if err = json.Unmarshal(data, &onDisk); err != nil {
		return nil, model.StorageFailure(err, "failed to decode account table")
	}
	table := make(map[string]model.Account, len(onDisk))
	for name, fa := range onDisk {
		a := fa.Account
		a.PasswordHash = fa.PasswordHash
		table[name] = a
	}
	return table, nil
}

// Load returns the full account table keyed by username.
func (s *FileAccountStorage) Load() (map[string]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readDecoded()
}

// Find returns the account for username
func (s *FileAccountStorage) Find(username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, err := s.readDecoded()
	if err != nil {
		return nil, err
	}
	a, ok := table[username]
	if !ok {
		return nil, model.NotFoundErrorFmt("account not found: %s", username)
	}
	return &a, nil
}

// Put inserts or replaces an account
func (s *FileAccountStorage) Put(acct model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, err := s.readDecoded()
	if err != nil {
		return err
	}
	table[acct.Username] = acct
	return s.write(table)
}

// Delete removes an account by username
func (s *FileAccountStorage) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, err := s.readDecoded()
	if err != nil {
		return err
	}
	if _, ok := table[username]; !ok {
		return model.NotFoundErrorFmt("account not found: %s", username)
	}
	delete(table, username)
	return s.write(table)
}

// Update applies mutate to one entry of the table under the write lock.
func (s *FileAccountStorage) Update(username string, mutate func(*model.Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, err := s.readDecoded()
	if err != nil {
		return err
	}
	a, ok := table[username]
	if !ok {
		return model.NotFoundErrorFmt("account not found: %s", username)
	}
	if err = mutate(&a); err != nil {
		return err
	}
	table[username] = a
	return s.write(table)
}
