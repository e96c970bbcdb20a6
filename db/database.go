package db

import (
	"fmt"
	"net/url"

	"lexcase_api_go/config"
	"lexcase_api_go/logger"
	"lexcase_api_go/models"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the database. A configured Turso URL takes precedence over
// the local file, which is opened in WAL mode for concurrency.
func Initialize(cfg *config.Config) error {
	var err error

	// Determine log level based on environment
	logLevel := gormlogger.Info
	if cfg.IsProduction() {
		logLevel = gormlogger.Warn
	}

	gormConfig := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(logLevel),
		NowFunc: models.Now,
		// References between entities are application-maintained
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	if cfg.TursoDatabaseURL != "" {
		dsn, dsnErr := libsqlDSN(cfg.TursoDatabaseURL, cfg.TursoAuthToken)
		if dsnErr != nil {
			return dsnErr
		}
		DB, err = gorm.Open(sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn}), gormConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to libsql database: %w", err)
		}
		logger.Log.Info("Database connection established (libsql remote)")
		return nil
	}

	dsn := cfg.DBPath + "?_journal_mode=WAL&_busy_timeout=5000"
	DB, err = gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Log.Info("Database connection established (WAL mode enabled)")
	return nil
}

// libsqlDSN appends the auth token to a libsql URL
func libsqlDSN(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid TURSO_DATABASE_URL: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("authToken", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(values ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(values...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
