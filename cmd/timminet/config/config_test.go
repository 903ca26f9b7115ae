package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandyscotchland/timminet/auth"
	"github.com/brandyscotchland/timminet/hostexec"
	"github.com/brandyscotchland/timminet/storage"
)

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 9999
storage:
  driver: file
  data_dir: ` + dir + `
auth:
  max_attempts: 3
sessions:
  lifetime: 1h
`
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0600))

	Load(file)
	c := Get()
	require.NotNil(t, c)

	assert.Equal(t, 9999, c.Server.Port)
	assert.Equal(t, storage.DriverFile, c.Storage.Driver)
	assert.Equal(t, dir, c.Storage.DataDir)

	// Overridden value next to untouched defaults.
	assert.Equal(t, 3, c.Auth.MaxAttempts)
	assert.Equal(t, auth.DefaultHashCost, c.Auth.HashCost)
	assert.Equal(t, auth.DefaultLockoutDuration, c.Auth.LockoutDuration.Duration())
	assert.Equal(t, time.Hour, c.Sessions.Lifetime.Duration())
	assert.Equal(t, SessionBackendMemory, c.Sessions.Store.Backend)
	assert.Equal(t, hostexec.DefaultTimeout, c.Exec.Timeout.Duration())
	assert.Equal(t, "INFO", c.Logging.Internal.Level)
}
