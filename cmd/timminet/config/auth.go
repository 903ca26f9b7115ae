package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"
	"golang.org/x/crypto/bcrypt"

	"github.com/brandyscotchland/timminet/auth"
)

// authConf configures credential hashing and the brute-force lockout.
type authConf struct {
	HashCost        int                     `yaml:"hash_cost"`
	MaxAttempts     int                     `yaml:"max_attempts"`
	LockoutDuration duration.DurationOption `yaml:"lockout_duration"`
}

func (c *authConf) validate() error {
	if c.HashCost < bcrypt.MinCost || c.HashCost > bcrypt.MaxCost {
		return errors.Errorf("error in auth conf: hash_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.MaxAttempts < 1 {
		return errors.New("error in auth conf: max_attempts must be at least 1")
	}
	if c.LockoutDuration.Duration() <= 0 {
		return errors.New("error in auth conf: lockout_duration must be positive")
	}
	return nil
}

var defaultAuthConf = authConf{
	HashCost:        auth.DefaultHashCost,
	MaxAttempts:     auth.DefaultMaxAttempts,
	LockoutDuration: duration.DurationOption(auth.DefaultLockoutDuration),
}
