package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"

	"github.com/brandyscotchland/timminet/session"
)

type sessionBackend string

const (
	// SessionBackendMemory keeps sessions in process memory.
	SessionBackendMemory sessionBackend = "memory"
	// SessionBackendBadger persists sessions across restarts.
	SessionBackendBadger sessionBackend = "badger"
)

// sessionsConf configures session lifetime and the session store.
type sessionsConf struct {
	Lifetime     duration.DurationOption `yaml:"lifetime"`
	CookieSecure bool                    `yaml:"cookie_secure"`
	Store        sessionStoreConf        `yaml:"store"`
}

type sessionStoreConf struct {
	Backend sessionBackend `yaml:"backend"`
	Dir     string         `yaml:"dir"`
}

func (c *sessionsConf) validate() error {
	switch c.Store.Backend {
	case SessionBackendMemory:
	case SessionBackendBadger:
		if c.Store.Dir == "" {
			return errors.New("error in sessions conf: store.dir must be specified for the badger backend")
		}
	default:
		return errors.Errorf("error in sessions conf: unknown store backend '%s'", c.Store.Backend)
	}
	if c.Lifetime.Duration() <= 0 {
		return errors.New("error in sessions conf: lifetime must be positive")
	}
	return nil
}

var defaultSessionsConf = sessionsConf{
	Lifetime: duration.DurationOption(session.DefaultLifetime),
	Store: sessionStoreConf{
		Backend: SessionBackendMemory,
	},
}
