package database

import (
	"fmt"
	"time"

	"procurement/internal/model"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection opens a gorm connection pool with statements logged through logrus
func NewConnection(dsn string, level gormlogger.LogLevel) (*gorm.DB, error) {
	gormLogger := gormlogger.New(
		logrusWriter{entry: log.WithField("source", "gorm")},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service owns
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.ProcurementRequest{},
		&model.RequestItem{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.AuditLog{},
		&model.SequenceCounter{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}

	log.Info("database schema is up to date")
	return nil
}

// logrusWriter bridges gorm logging to logrus at debug level
type logrusWriter struct {
	entry *log.Entry
}

func (w logrusWriter) Printf(msg string, args ...interface{}) {
	w.entry.Debugf(msg, args...)
}
