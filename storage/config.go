package storage

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brandyscotchland/timminet/storage/model"
)

// DriverType represents the type of account table backend
type DriverType string

const (
	// DriverFile stores the account table as a JSON file
	DriverFile DriverType = "file"
	// DriverSQLite is the SQLite driver
	DriverSQLite DriverType = "sqlite"
	// DriverMySQL is the MySQL driver
	DriverMySQL DriverType = "mysql"
	// DriverPostgres is the PostgreSQL driver
	DriverPostgres DriverType = "postgres"
)

// SupportedDrivers lists the backends a console can be configured with.
var SupportedDrivers = []DriverType{
	DriverFile,
	DriverSQLite,
	DriverMySQL,
	DriverPostgres,
}

// DSN creates and returns a dsn connection string for the passed DriverType and DSNConf
func DSN(driver DriverType, conf DSNConf) (string, error) {
	switch driver {
	case DriverFile, DriverSQLite:
		return "", errors.Errorf("driver %s does not use dsn", driver)
	case DriverMySQL:
		if conf.Port == 0 {
			conf.Port = 3306
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True", conf.User, conf.Password, conf.Host, conf.Port,
			conf.DB,
		), nil
	case DriverPostgres:
		if conf.Port == 0 {
			conf.Port = 5432
		}
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d",
			conf.Host, conf.User, conf.Password, conf.DB, conf.Port,
		), nil
	default:
		return "", errors.Errorf("unsupported driver '%s'", driver)
	}
}

// DSNConf provides configuration options for database connection strings.
// It contains common connection parameters used across the relational
// drivers. When used with the DSN function, this struct helps generate
// proper connection strings based on the selected driver type.
type DSNConf struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"db"`
}

// Config represents the account storage configuration
type Config struct {
	// Driver is the backend type
	Driver DriverType `yaml:"driver"`
	// DSN is the data source name (connection string) for the relational drivers
	DSN string `yaml:"dsn"`
	// DataDir is the directory where the account table lives (file and sqlite drivers)
	DataDir string `yaml:"data_dir"`
	// Debug enables debug logging
	Debug bool `yaml:"debug"`
}

// Connect establishes a connection to the database based on the configuration
func Connect(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case DriverSQLite:
		// If DSN is not provided, use the default database file in DataDir
		dsn := cfg.DSN
		if dsn == "" {
			dsn = filepath.Join(cfg.DataDir, "timminet.db")
		}
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, errors.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logMode := logger.Silent
	if cfg.Debug {
		logMode = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logMode)})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}
	if err = db.AutoMigrate(&model.Account{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate account table")
	}
	return db, nil
}

// LoadBackends loads and returns the storage backends for the passed Config
func LoadBackends(cfg Config) (model.Backends, error) {
	if cfg.Driver == DriverFile {
		s, err := NewFileAccountStorage(cfg.DataDir)
		if err != nil {
			return model.Backends{}, err
		}
		return model.Backends{Accounts: s}, nil
	}
	db, err := Connect(cfg)
	if err != nil {
		return model.Backends{}, err
	}
	return model.Backends{Accounts: NewAccountsStorage(db)}, nil
}
