// Package config loads and validates the console's yaml configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
	"gopkg.in/yaml.v3"

	"github.com/brandyscotchland/timminet"
)

// Config holds the whole console configuration.
type Config struct {
	Server   timminet.ServerConf `yaml:"server"`
	Logging  loggingConf         `yaml:"logging"`
	Storage  storageConf         `yaml:"storage"`
	Auth     authConf            `yaml:"auth"`
	Sessions sessionsConf        `yaml:"sessions"`
	Exec     execConf            `yaml:"exec"`
}

var conf *Config

// Get returns the loaded Config
func Get() *Config {
	return conf
}

var possibleConfigLocations = []string{
	".",
	"config",
	"/etc/timminet",
}

func (c *Config) validate() error {
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	if err := c.Auth.validate(); err != nil {
		return err
	}
	if err := c.Sessions.validate(); err != nil {
		return err
	}
	return c.Exec.validate()
}

// Load loads the configuration from the passed file; if filename is
// empty the usual locations are searched for a config.yaml.
func Load(filename string) {
	if filename == "" {
		filename = findConfigFile()
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		log.WithError(err).Fatal("could not read config file")
	}
	conf = &Config{
		Server:   defaultServerConf,
		Logging:  defaultLoggingConf,
		Storage:  defaultStorageConf,
		Auth:     defaultAuthConf,
		Sessions: defaultSessionsConf,
		Exec:     defaultExecConf,
	}
	if err = yaml.Unmarshal(data, conf); err != nil {
		log.WithError(err).Fatal("could not parse config file")
	}
	if err = conf.validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
}

func findConfigFile() string {
	for _, dir := range possibleConfigLocations {
		f := filepath.Join(dir, "config.yaml")
		if fileutils.FileExists(f) {
			return f
		}
	}
	log.Fatal(errors.New("no config file found"))
	return ""
}

var defaultServerConf = timminet.ServerConf{
	Port: 8448,
}
