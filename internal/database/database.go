package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gradecalc/internal/config"
	"gradecalc/internal/model"
)

// InitDB opens the database behind the sqlite and postgres store drivers and
// migrates the session record table.
func InitDB(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		dialector = sqlite.Open(cfg.SQLiteDSN)
	case config.StorePostgres:
		dsn := "host=" + cfg.DBHost + " user=" + cfg.DBUser + " password=" + cfg.DBPassword + " dbname=" + cfg.DBName + " port=" + cfg.DBPort + " sslmode=disable"
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("store driver %q has no database", cfg.StoreDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if cfg.StoreDriver == config.StoreSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// a shared in-memory database lives only while a connection is open
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&model.SessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate the database: %w", err)
	}
	return db, nil
}
