package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-employee-api/internal/model"
)

// SQLite is the embedded single-node store used when DB_DRIVER=sqlite.
type SQLite struct {
	Gorm *gorm.DB
}

// LowerFunc is the SQL name of a Unicode-aware lower(). The builtin LOWER
// only folds ASCII.
const LowerFunc = "unicode_lower"

var registerFuncs = sync.OnceValue(func() error {
	return gosqlite.RegisterDeterministicScalarFunction(LowerFunc, 1, unicodeLower)
})

func unicodeLower(_ *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

func OpenSQLite(path string) (*SQLite, error) {
	if err := registerFuncs(); err != nil {
		return nil, fmt.Errorf("register sqlite functions: %w", err)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := gdb.AutoMigrate(&model.User{}, &model.Employee{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite database: %w", err)
	}

	slog.Info("database connected", "driver", "sqlite", "path", path)
	return &SQLite{Gorm: gdb}, nil
}

func (s *SQLite) Close() {
	sqlDB, err := s.Gorm.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}

func (s *SQLite) Health(ctx context.Context) error {
	sqlDB, err := s.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
