package main

import (
	"fmt"

	"procurement/internal/config"
	"procurement/internal/database"

	"github.com/spf13/pflag"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogLevel is a pflag.Value for the gorm logger level
type gormLogLevel gormlogger.LogLevel

func (l *gormLogLevel) String() string {
	switch gormlogger.LogLevel(*l) {
	case gormlogger.Silent:
		return "silent"
	case gormlogger.Error:
		return "error"
	case gormlogger.Info:
		return "info"
	}
	return "warn"
}

func (l *gormLogLevel) Set(v string) error {
	switch v {
	case "silent":
		*l = gormLogLevel(gormlogger.Silent)
	case "error":
		*l = gormLogLevel(gormlogger.Error)
	case "warn":
		*l = gormLogLevel(gormlogger.Warn)
	case "info":
		*l = gormLogLevel(gormlogger.Info)
	default:
		return fmt.Errorf("unknown gorm log level: %s", v)
	}
	return nil
}

func (l *gormLogLevel) Type() string {
	return "logLevel"
}

// DBFlags holds the database options shared by every command
type DBFlags struct {
	DSN      string
	LogLevel gormLogLevel
}

func NewDBFlags() *DBFlags {
	return &DBFlags{LogLevel: gormLogLevel(gormlogger.Warn)}
}

func (f *DBFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.DSN, "database-dsn", f.DSN, "PostgreSQL DSN (defaults to one built from the DB_* environment)")
	fs.Var(&f.LogLevel, "db-log-level", "gorm log level (silent,error,warn,info)")
}

// Open connects using the flag DSN, falling back to the configured one
func (f *DBFlags) Open(cfg *config.Config) (*gorm.DB, error) {
	dsn := f.DSN
	if dsn == "" {
		dsn = cfg.DSN()
	}
	return database.NewConnection(dsn, gormlogger.LogLevel(f.LogLevel))
}
