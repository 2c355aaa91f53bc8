package config

import (
	"fmt"
	"strings"

	"tourmate-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens the configured database and migrates the schema.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	db, err := OpenDatabase(cfg.DBDriver, cfg.DSN, logger.Warn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenDatabase picks a GORM dialector by driver name. SQLite is the fallback
// and always runs with foreign keys enforced so ownership cascades work.
func OpenDatabase(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres", "pg":
		dialector = postgres.Open(dsn)
	default:
		if dsn == "" {
			dsn = "file::memory:"
		}
		dialector = sqlite.Open(withForeignKeys(dsn))
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer; in-memory databases are per connection
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.PhotoDiary{},
		&models.SOSAlert{},
		&models.RevokedToken{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
