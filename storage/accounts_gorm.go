package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brandyscotchland/timminet/storage/model"
)

// AccountsStorage implements model.AccountStore using GORM. The
// relational backends serialize per-account mutations with a row lock
// inside a transaction.
type AccountsStorage struct {
	db *gorm.DB
}

// NewAccountsStorage returns an AccountsStorage backed by db.
func NewAccountsStorage(db *gorm.DB) *AccountsStorage {
	return &AccountsStorage{db: db}
}

// Load returns the full account table keyed by username.
func (s *AccountsStorage) Load() (map[string]model.Account, error) {
	var accounts []model.Account
	if err := s.db.Model(&model.Account{}).Find(&accounts).Error; err != nil {
		return nil, model.StorageFailure(err, "failed to load accounts")
	}
	table := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		table[a.Username] = a
	}
	return table, nil
}

// Find returns the account for username
func (s *AccountsStorage) Find(username string) (*model.Account, error) {
	var a model.Account
	if err := s.db.Where("username = ?", username).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("account not found: %s", username)
		}
		return nil, model.StorageFailure(err, "failed to load account")
	}
	return &a, nil
}

// Put inserts or replaces an account
func (s *AccountsStorage) Put(acct model.Account) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		UpdateAll: true,
	}).Create(&acct).Error
	return model.StorageFailure(err, "failed to store account")
}

// Delete removes an account by username
func (s *AccountsStorage) Delete(username string) error {
	res := s.db.Where("username = ?", username).Delete(&model.Account{})
	if res.Error != nil {
		return model.StorageFailure(res.Error, "failed to delete account")
	}
	if res.RowsAffected == 0 {
		return model.NotFoundErrorFmt("account not found: %s", username)
	}
	return nil
}

// Update applies mutate to the stored account inside a transaction so
// concurrent mutations of the same account are not lost.
func (s *AccountsStorage) Update(username string, mutate func(*model.Account) error) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			var a model.Account
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("username = ?", username).First(&a).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundErrorFmt("account not found: %s", username)
				}
				return model.StorageFailure(err, "failed to load account")
			}
			if err := mutate(&a); err != nil {
				return err
			}
			return model.StorageFailure(tx.Save(&a).Error, "failed to store account")
		},
	)
}
