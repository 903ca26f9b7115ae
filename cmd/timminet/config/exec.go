package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"

	"github.com/brandyscotchland/timminet/hostexec"
)

// execConf configures the external command runner.
type execConf struct {
	Timeout         duration.DurationOption `yaml:"timeout"`
	FirewallLogPath string                  `yaml:"firewall_log"`
}

func (c *execConf) validate() error {
	if c.Timeout.Duration() <= 0 {
		return errors.New("error in exec conf: timeout must be positive")
	}
	return nil
}

var defaultExecConf = execConf{
	Timeout: duration.DurationOption(hostexec.DefaultTimeout),
}
