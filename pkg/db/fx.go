package db

import (
	"time"

	"github.com/renolink/renolink/internal/config"
	obslogger "github.com/renolink/renolink/internal/observability/logger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Elevated wraps a gorm handle opened with privileged credentials. It
// bypasses per-row access policies and must only be injected into the
// few read paths that need it (locale-preference lookups).
type Elevated struct {
	*gorm.DB
}

var Module = fx.Module("db",
	fx.Provide(New),
	fx.Provide(NewElevated),
)

func New(cfg config.Config) (*gorm.DB, error) {
	return open(Config{
		Type:            cfg.DBType,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
}

// NewElevated opens the privileged handle. Without distinct elevated
// credentials it reuses the regular ones so local development keeps
// working against a database with no row-level policies.
func NewElevated(cfg config.Config, base *gorm.DB) (Elevated, error) {
	if !cfg.HasElevatedCredentials() {
		return Elevated{DB: base}, nil
	}

	conn, err := open(Config{
		Type:            cfg.DBType,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBElevatedUser,
		Password:        cfg.DBElevatedPassword,
		SSLMode:         cfg.DBSSLMode,
		MaxIdleConn:     1,
		MaxOpenConn:     2,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return Elevated{}, err
	}
	return Elevated{DB: conn}, nil
}

func open(cfg Config) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig()),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	return conn, nil
}
