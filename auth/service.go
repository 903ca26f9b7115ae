package auth

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/brandyscotchland/timminet/storage/model"
)

const (
	// DefaultMaxAttempts is the number of consecutive failures after
	// which an account locks.
	DefaultMaxAttempts = 5
	// DefaultLockoutDuration is how long a locked account refuses
	// authentication.
	DefaultLockoutDuration = 15 * time.Minute
)

// placeholderPassword seeds the digest used for timing-equalized
// comparisons against unknown usernames.
const placeholderPassword = "timminet-placeholder-credential"

// Service answers "is this credential pair valid now" by orchestrating
// the account store, the password policy and the per-account lockout
// state.
type Service struct {
	store  model.AccountStore
	policy PasswordPolicy

	// MaxAttempts and LockoutDuration configure the lockout state
	// machine.
	MaxAttempts     int
	LockoutDuration time.Duration

	// Now is the clock; replaced in tests.
	Now func() time.Time

	// placeholderHash is compared against when the username is unknown,
	// so a miss takes as long as a real verification failure.
	placeholderHash string
}

// NewService returns a Service with the default lockout parameters.
func NewService(store model.AccountStore, policy PasswordPolicy) (*Service, error) {
	placeholder, err := policy.Hash(placeholderPassword)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare placeholder hash")
	}
	return &Service{
		store:           store,
		policy:          policy,
		MaxAttempts:     DefaultMaxAttempts,
		LockoutDuration: DefaultLockoutDuration,
		Now:             time.Now,
		placeholderHash: placeholder,
	}, nil
}

// Policy returns the password policy the service was built with.
func (s *Service) Policy() PasswordPolicy {
	return s.policy
}

// Authenticate verifies the credential pair. It returns (nil, nil) for
// an unknown username or a wrong password, an AccountLockedError while
// the lockout is active, and the account on success. Failures increment
// the persisted attempt counter; success resets it and stamps LastLogin.
func (s *Service) Authenticate(username, password string) (*model.Account, error) {
	acct, err := s.store.Find(username)
	if err != nil {
		var notFound model.NotFoundError
		if errors.As(err, &notFound) {
			// Burn a verification so unknown usernames are not
			// distinguishable by response time.
			s.policy.Verify(password, s.placeholderHash)
			return nil, nil
		}
		return nil, err
	}

	now := s.Now()
	if acct.IsLocked(now) {
		return nil, &AccountLockedError{Until: *acct.LockedUntil}
	}

	if !s.policy.Verify(password, acct.PasswordHash) {
		if err = s.store.Update(
			username, func(a *model.Account) error {
				a.RecordFailure(s.Now(), s.MaxAttempts, s.LockoutDuration)
				return nil
			},
		); err != nil {
			return nil, err
		}
		log.WithField("username", username).Info("failed login attempt")
		return nil, nil
	}

	var updated *model.Account
	if err = s.store.Update(
		username, func(a *model.Account) error {
			a.ResetLockout()
			t := s.Now()
			a.LastLogin = &t
			updated = a
			return nil
		},
	); err != nil {
		return nil, err
	}
	return updated, nil
}

// Create hashes the password and persists a new active account with
// zeroed lockout state. It fails with a WeakPasswordError when the
// policy rejects the password and with a model.AlreadyExistsError when
// the username is taken.
func (s *Service) Create(username, password string, role model.Role) (*model.Account, error) {
	if !s.policy.Validate(password) {
		return nil, errWeakPassword
	}
	if _, err := s.store.Find(username); err == nil {
		return nil, model.AlreadyExistsErrorFmt("account already exists: %s", username)
	} else {
		var notFound model.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	hash, err := s.policy.Hash(password)
	if err != nil {
		return nil, err
	}
	acct := model.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    s.Now(),
	}
	if err = s.store.Put(acct); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"username": username, "role": role}).Info("created account")
	return &acct, nil
}

// ChangePassword re-authenticates with the current password before
// accepting the new one, which must satisfy the policy.
func (s *Service) ChangePassword(username, currentPassword, newPassword string) error {
	acct, err := s.Authenticate(username, currentPassword)
	if err != nil {
		return err
	}
	if acct == nil {
		return ErrInvalidCredentials
	}
	if !s.policy.Validate(newPassword) {
		return errWeakPassword
	}
	hash, err := s.policy.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.store.Update(
		username, func(a *model.Account) error {
			a.PasswordHash = hash
			return nil
		},
	)
}

// Unlock clears the lockout state unconditionally.
func (s *Service) Unlock(username string) error {
	return s.store.Update(
		username, func(a *model.Account) error {
			a.ResetLockout()
			return nil
		},
	)
}
