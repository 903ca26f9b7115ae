package model

import (
	"time"
)

// Role gates access to mutating console operations.
type Role string

const (
	// RoleUser may perform read operations only.
	RoleUser Role = "user"
	// RoleAdmin may additionally mutate host state and manage accounts.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is a console operator account. The username is the unique key.
// PasswordHash holds a bcrypt digest and is never serialized to API
// responses.
type Account struct {
	Username     string    `gorm:"primaryKey" json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`

	// LastLogin is updated only on successful authentication.
	LastLogin *time.Time `json:"last_login"`
	// LoginAttempts counts consecutive failed authentications.
	LoginAttempts int `json:"login_attempts"`
	// LockedUntil, when set and in the future, refuses authentication
	// regardless of credential correctness. A value in the past means
	// "not locked"; expiry is evaluated lazily, there is no sweeper.
	LockedUntil *time.Time `json:"locked_until"`
}

// IsLocked reports whether the account refuses authentication at the
// given instant.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// RecordFailure registers one failed authentication and transitions the
// account to locked once maxAttempts consecutive failures are reached.
func (a *Account) RecordFailure(now time.Time, maxAttempts int, lockFor time.Duration) {
	a.LoginAttempts++
	if a.LoginAttempts >= maxAttempts {
		until := now.Add(lockFor)
		a.LockedUntil = &until
	}
}

// ResetLockout clears the failure counter and any pending lock. Both
// fields move together, on successful authentication as well as on
// administrative unlock.
func (a *Account) ResetLockout() {
	a.LoginAttempts = 0
	a.LockedUntil = nil
}

// AccountStore abstracts the persisted account table. Implementations
// must serialize mutations so that concurrent updates to the same
// account are never silently lost and readers never observe a partially
// written table.
type AccountStore interface {
	// Load returns the full account table. An absent backing store is an
	// empty table, not an error.
	Load() (map[string]Account, error)
	// Find returns the account for username or a NotFoundError.
	Find(username string) (*Account, error)
	// Put inserts or replaces an account.
	Put(acct Account) error
	// Delete removes an account by username.
	Delete(username string) error
	// Update applies mutate to the stored account under the store's write
	// lock and persists the result.
	Update(username string, mutate func(*Account) error) error
}
