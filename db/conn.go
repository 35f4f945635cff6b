// Package db opens the account database and keeps its schema up to date
package db

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"iskacare/clinic-api/internal/model"
	"iskacare/clinic-api/pkg/util"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the database configured under db.driver and db.dsn
func New() (*gorm.DB, error) {
	driver := viper.GetString("db.driver")
	dsn := viper.GetString("db.dsn")

	// If running in a docker container don't allow the sqlite file to be created.
	// The host should instead mount it using volumes
	if driver == "sqlite" && util.IsRunningInDocker() && !strings.Contains(dsn, ":memory:") {
		if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
		}
	}

	return Open(driver, dsn)
}

// Open connects using the given driver ("sqlite" or "postgres") and migrates
// the schema. Unique index violations are reported as gorm.ErrDuplicatedKey.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle, %w", err)
		}

		// SQLite allows a single writer, and every :memory: connection is its own database
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(model.Account{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
