package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HELPDESK_PORT", "9090")
	t.Setenv("HELPDESK_BASE_PATH", "desk")
	t.Setenv("HELPDESK_DB_FOLDER", "/tmp/desk")
	t.Setenv("HELPDESK_STRICT_OWNERSHIP", "true")
	defer Set(nil)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, s.Port)
	assert.Equal(t, "/desk/", s.BasePath)
	assert.True(t, s.StrictOwnership)
	assert.Equal(t, 30, s.LoginRatePerMinute)
	assert.Equal(t, filepath.Join("/tmp/desk", GetName()+".db"), GetDBPath())
}

func TestLoadRejectsUnknownDatabase(t *testing.T) {
	t.Setenv("HELPDESK_DB_TYPE", "oracle")
	defer Set(nil)

	_, err := Load()
	assert.Error(t, err)
}

func TestCheckValid(t *testing.T) {
	s := Defaults()
	s.Port = 0
	assert.ErrorContains(t, s.CheckValid(), "port is not valid: 0")

	s = Defaults()
	s.SessionMaxAge = -1
	assert.ErrorContains(t, s.CheckValid(), "session max age must not be negative")

	s = Defaults()
	s.DBType = "mysql"
	assert.ErrorContains(t, s.CheckValid(), "unsupported database type: mysql")

	s = Defaults()
	s.BasePath = "/panel"
	require.NoError(t, s.CheckValid())
	assert.Equal(t, "/panel/", s.BasePath)
}

func TestDatabaseConfig(t *testing.T) {
	c := SQLiteConfigAt("/tmp/x/helpdesk.db")
	require.NoError(t, c.ValidateConfig())
	assert.True(t, c.IsSQLite())
	assert.Contains(t, c.GetDSN(), "/tmp/x/helpdesk.db?")

	pg := &DatabaseConfig{Type: DatabaseTypePostgreSQL}
	assert.Error(t, pg.ValidateConfig())
	pg.Postgres.DSN = "host=localhost dbname=helpdesk"
	require.NoError(t, pg.ValidateConfig())
	assert.Equal(t, "host=localhost dbname=helpdesk", pg.GetDSN())
}

func TestNameAndVersionEmbedded(t *testing.T) {
	assert.Equal(t, "helpdesk", GetName())
	assert.NotEmpty(t, GetVersion())
}
