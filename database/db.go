// Package database owns the gorm connection of the helpdesk: opening it,
// migrating the schema and handing out request-scoped handles.
package database

import (
	"context"
	"errors"
	"strings"

	"github.com/opsdesk/helpdesk/config"
	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db     *gorm.DB
	dbType config.DatabaseType
)

func initModels() error {
	models := []any{
		&model.User{},
		&model.Ticket{},
		&model.Comment{},
		&model.AuditLog{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			logger.Errorf("Error auto migrating model %T: %v", m, err)
			return err
		}
	}
	return nil
}

// InitDB opens the database described by cfg and migrates the schema.
func InitDB(cfg *config.DatabaseConfig) error {
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectoryExists(); err != nil {
		return err
	}

	var gormLogger gormlogger.Interface
	if config.IsDebug() {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	}

	var dialector gorm.Dialector
	if cfg.IsPostgreSQL() {
		dialector = postgres.Open(cfg.GetDSN())
	} else {
		dialector = sqlite.Open(cfg.GetDSN())
	}

	var err error
	db, err = gorm.Open(dialector, c)
	if err != nil {
		return err
	}
	dbType = cfg.Type

	if cfg.IsSQLite() {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if _, err = sqlDB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			return err
		}
	}

	return initModels()
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	if dbType == config.DatabaseTypeSQLite {
		if err := Checkpoint(); err != nil {
			logger.Warning("error executing checkpoint:", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	db = nil
	return err
}

func GetDB() *gorm.DB {
	return db
}

// Scope returns a handle whose statements run under ctx. The returned release
// func cancels ctx, so nothing started through the handle outlives the caller.
func Scope(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	return db.WithContext(ctx), cancel
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}

func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
