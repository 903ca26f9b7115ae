package config

import (
	"slices"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/brandyscotchland/timminet/storage"
	"github.com/brandyscotchland/timminet/storage/model"
)

type storageConf struct {
	Driver  storage.DriverType `yaml:"driver"`
	DataDir string             `yaml:"data_dir"`
	DSN     string             `yaml:"dsn"`
	storage.DSNConf
	Debug bool `yaml:"debug"`
}

func (c *storageConf) validate() error {
	if !slices.Contains(storage.SupportedDrivers, c.Driver) {
		return errors.Errorf("error in storage conf: unsupported driver '%s'", c.Driver)
	}
	if c.Driver == storage.DriverFile || c.Driver == storage.DriverSQLite {
		if c.DataDir == "" {
			return errors.New("error in storage conf: data_dir must be specified")
		}
		return nil
	}
	var err error
	if c.DSN == "" {
		c.DSN, err = storage.DSN(c.Driver, c.DSNConf)
	}
	return err
}

var defaultStorageConf = storageConf{
	Driver:  storage.DriverFile,
	DataDir: "/var/lib/timminet",
	DSNConf: storage.DSNConf{
		User: "timminet",
		Host: "localhost",
		DB:   "timminet",
	},
	Debug: false,
}

// LoadStorageBackends loads and returns the storage backends for the passed storageConf
func LoadStorageBackends(c storageConf) (model.Backends, error) {
	backs, err := storage.LoadBackends(
		storage.Config{
			Driver:  c.Driver,
			DSN:     c.DSN,
			DataDir: c.DataDir,
			Debug:   c.Debug,
		},
	)
	if err != nil {
		return model.Backends{}, err
	}
	log.Info("Loaded storage backend")
	return backs, nil
}
