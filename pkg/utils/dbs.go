package utils

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/code-100-precent/LingMeme/pkg/constants"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDatabase opens the gallery database; empty driver/dsn fall back to DB_DRIVER/DSN
func InitDatabase(logWrite io.Writer, driver, dsn string) (*gorm.DB, error) {
	if driver == "" {
		driver = GetEnv(constants.ENV_DB_DRIVER)
	}
	if dsn == "" {
		dsn = GetEnv(constants.ENV_DSN)
	}

	if logWrite == nil {
		logWrite = os.Stdout
	}

	newLogger := logger.New(
		log.New(logWrite, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	cfg := &gorm.Config{
		Logger:                                   newLogger,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := createDatabaseInstance(cfg, driver, dsn)
	if err != nil {
		return nil, err
	}

	ConfigureConnectionPool(db)

	return db, nil
}

// ConfigureConnectionPool configure database connection pool
func ConfigureConnectionPool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get database instance: %v", err)
		return
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)
}

func MakeMigrates(db *gorm.DB, insts []any) error {
	for _, v := range insts {
		if err := db.AutoMigrate(v); err != nil {
			return err
		}
	}
	return nil
}
