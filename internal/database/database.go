package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"

	"github.com/digkill/TGUpdateStore/internal/config"
)

// unicodeLowerFunc is available on every SQLite connection. The builtin
// LOWER folds ASCII letters only.
const unicodeLowerFunc = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(unicodeLowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Connect opens the configured database with sensible pooling defaults.
func Connect(cfg config.Config) (*sql.DB, Dialect, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	switch cfg.DBDriver {
	case config.DriverMySQL:
		if cfg.MySQLDSN == "" {
			return nil, "", &config.ConfigurationError{Missing: []string{"MYSQL_DSN"}}
		}
		dialect = MySQL
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, "", fmt.Errorf("open mysql: %w", err)
		}
		db.SetConnMaxLifetime(time.Minute * 5)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	case config.DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, "", &config.ConfigurationError{Missing: []string{"SQLITE_PATH"}}
		}
		dialect = SQLite
		db, err = sql.Open("sqlite", SQLiteDSN(cfg.SQLitePath))
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		// One writer keeps SQLite from reporting SQLITE_BUSY under concurrent upserts.
		db.SetMaxOpenConns(1)
	default:
		return nil, "", &config.ConfigurationError{Err: fmt.Errorf("unsupported driver %q", cfg.DBDriver)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}

	return db, dialect, nil
}

// SQLiteDSN appends the pragmas the schema relies on to a file path.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, tables Tables) error {
	stmts, err := schemaStatements(dialect, tables)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
