package db

import (
	"fmt"
	"time"

	"github.com/ikkim/storybook-backend/config"
	appLogger "github.com/ikkim/storybook-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// gormConfig stamps timestamps in UTC. sqlite orders created_at as text, so
// every stored value must carry the same offset.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent), // we log through our own logger
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Initialize initializes the database connection
func Initialize(cfg *config.DatabaseConfig) error {
	fields := map[string]interface{}{"driver": cfg.Driver}
	if cfg.Driver == "postgres" {
		fields["host"] = cfg.Host
		fields["port"] = cfg.Port
		fields["database"] = cfg.DBName
		fields["user"] = cfg.User
	} else {
		fields["path"] = cfg.SQLitePath
	}
	appLogger.Info("Connecting to database", fields)

	dialector, err := openDialector(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, gormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY on admin edits
		maxOpen = 1
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpen)

	appLogger.Info("Database connection established successfully", map[string]interface{}{
		"max_idle_conns": cfg.MaxIdleConns,
		"max_open_conns": maxOpen,
	})
	return nil
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
