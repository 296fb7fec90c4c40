// Package config loads the helpdesk settings from the environment and exposes
// them through small getters, the way the rest of the application reads them.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

//go:embed version
var version string

//go:embed name
var name string

// envPrefix is prepended to every variable name, e.g. HELPDESK_PORT.
const envPrefix = "HELPDESK"

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// Settings holds every environment driven option of the helpdesk.
type Settings struct {
	Debug     bool   `envconfig:"DEBUG"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFolder string `envconfig:"LOG_FOLDER" default:"/var/log"`

	DBType   string `envconfig:"DB_TYPE" default:"sqlite"`
	DBFolder string `envconfig:"DB_FOLDER" default:"/etc/helpdesk"`
	DBPath   string `envconfig:"DB_PATH"`
	PGDSN    string `envconfig:"PG_DSN"`

	Listen   string `envconfig:"LISTEN"`
	Port     int    `envconfig:"PORT" default:"8080"`
	BasePath string `envconfig:"BASE_PATH" default:"/"`

	SecretKey       string `envconfig:"SECRET_KEY"`
	SessionMaxAge   int    `envconfig:"SESSION_MAX_AGE" default:"0"` // minutes, 0 keeps a browser session cookie
	StrictOwnership bool   `envconfig:"STRICT_OWNERSHIP"`

	LoginRatePerMinute int `envconfig:"LOGIN_RATE_PER_MINUTE" default:"30"`
	AuditRetentionDays int `envconfig:"AUDIT_RETENTION_DAYS" default:"90"`
}

var (
	mu       sync.Mutex
	settings *Settings
)

// Load reads an optional .env file and then the HELPDESK_* environment.
// The result replaces the settings returned by Get.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	s := &Settings{}
	if err := envconfig.Process(envPrefix, s); err != nil {
		return nil, err
	}
	if err := s.CheckValid(); err != nil {
		return nil, err
	}
	Set(s)
	return s, nil
}

// Set replaces the active settings. Used by Load, the CLI and tests.
func Set(s *Settings) {
	mu.Lock()
	defer mu.Unlock()
	settings = s
}

// Get returns the active settings, loading them on first use.
func Get() *Settings {
	mu.Lock()
	s := settings
	mu.Unlock()
	if s != nil {
		return s
	}
	s, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration, using defaults: %v\n", err)
		s = Defaults()
		Set(s)
	}
	return s
}

// Defaults returns the settings used when nothing is configured.
func Defaults() *Settings {
	return &Settings{
		LogLevel:           string(Info),
		LogFolder:          "/var/log",
		DBType:             string(DatabaseTypeSQLite),
		DBFolder:           "/etc/helpdesk",
		Port:               8080,
		BasePath:           "/",
		LoginRatePerMinute: 30,
		AuditRetentionDays: 90,
	}
}

// CheckValid normalizes the base path and rejects values the server cannot use.
func (s *Settings) CheckValid() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port is not valid: %d", s.Port)
	}
	if !strings.HasPrefix(s.BasePath, "/") {
		s.BasePath = "/" + s.BasePath
	}
	if !strings.HasSuffix(s.BasePath, "/") {
		s.BasePath += "/"
	}
	if s.SessionMaxAge < 0 {
		return fmt.Errorf("session max age must not be negative: %d", s.SessionMaxAge)
	}
	switch DatabaseType(s.DBType) {
	case DatabaseTypeSQLite, DatabaseTypePostgreSQL:
	default:
		return fmt.Errorf("unsupported database type: %s", s.DBType)
	}
	return nil
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	if Get().LogLevel == "" {
		return Info
	}
	return LogLevel(Get().LogLevel)
}

func IsDebug() bool {
	return Get().Debug
}

func GetDBFolderPath() string {
	return Get().DBFolder
}

func GetDBPath() string {
	if p := Get().DBPath; p != "" {
		return p
	}
	return filepath.Join(GetDBFolderPath(), GetName()+".db")
}

func GetLogFolder() string {
	return Get().LogFolder
}
