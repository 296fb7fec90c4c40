package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type     DatabaseType   `json:"type"`
	SQLite   SQLiteConfig   `json:"sqlite"`
	Postgres PostgresConfig `json:"postgres"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `json:"path"`
}

// PostgresConfig holds PostgreSQL specific configuration
type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// GetDatabaseConfig builds the database configuration from the active settings.
func GetDatabaseConfig() *DatabaseConfig {
	s := Get()
	return &DatabaseConfig{
		Type:     DatabaseType(s.DBType),
		SQLite:   SQLiteConfig{Path: GetDBPath()},
		Postgres: PostgresConfig{DSN: s.PGDSN},
	}
}

// SQLiteConfigAt returns a SQLite configuration for the given file.
func SQLiteConfigAt(path string) *DatabaseConfig {
	return &DatabaseConfig{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: path},
	}
}

// GetDSN returns the data source name for the database
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case DatabaseTypePostgreSQL:
		return c.Postgres.DSN
	default:
		return c.SQLite.Path + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"
	}
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLite path cannot be empty")
		}
	case DatabaseTypePostgreSQL:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("PostgreSQL DSN cannot be empty")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// IsPostgreSQL returns true if the database type is PostgreSQL
func (c *DatabaseConfig) IsPostgreSQL() bool {
	return c.Type == DatabaseTypePostgreSQL
}

// IsSQLite returns true if the database type is SQLite
func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.SQLite.Path)
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
