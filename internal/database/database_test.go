package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digkill/TGUpdateStore/internal/config"
)

func TestConnectSQLite_MigrateWithPrefix(t *testing.T) {
	cfg := config.Config{DBDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "bot.db")}
	db, dialect, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.Equal(t, SQLite, dialect)

	ctx := context.Background()
	tables := NewTables("tb_")
	require.NoError(t, Migrate(ctx, db, dialect, tables))
	// Idempotent.
	require.NoError(t, Migrate(ctx, db, dialect, tables))

	for _, name := range []string{
		tables.User, tables.Chat, tables.UserChat, tables.Message, tables.EditedMessage,
		tables.InlineQuery, tables.ChosenInlineResult, tables.CallbackQuery, tables.Update,
		tables.RequestLimiter,
	} {
		var got string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&got)
		require.NoError(t, err, name)
		assert.Equal(t, name, got)
	}

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestConnect_ConfigurationErrors(t *testing.T) {
	var cfgErr *config.ConfigurationError

	_, _, err := Connect(config.Config{DBDriver: config.DriverMySQL})
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"MYSQL_DSN"}, cfgErr.Missing)

	_, _, err = Connect(config.Config{DBDriver: config.DriverSQLite})
	require.True(t, errors.As(err, &cfgErr))

	_, _, err = Connect(config.Config{DBDriver: "mongo"})
	require.True(t, errors.As(err, &cfgErr))
}

func TestMigrate_UnknownDialect(t *testing.T) {
	_, err := schemaStatements(Dialect("oracle"), NewTables(""))
	require.Error(t, err)
}

func TestSchemaStatements_MySQLUsesPrefix(t *testing.T) {
	stmts, err := schemaStatements(MySQL, NewTables("p_"))
	require.NoError(t, err)
	require.Len(t, stmts, 10)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS `p_user`")
	assert.Contains(t, stmts[8], "`p_telegram_update`")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", SQLiteDSN("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", SQLiteDSN("file:a.db?mode=rwc"))
}

func TestDialectStatements(t *testing.T) {
	cols := []string{"bot_id", "id", "name"}

	assert.Equal(t, "INSERT IGNORE INTO `t` (`bot_id`, `id`, `name`) VALUES (?, ?, ?)", MySQL.InsertIgnore("t", cols))
	assert.Equal(t, "INSERT OR IGNORE INTO `t` (`bot_id`, `id`, `name`) VALUES (?, ?, ?)", SQLite.InsertIgnore("t", cols))
	assert.Equal(t, "INSERT INTO `t` (`bot_id`, `id`, `name`) VALUES (?, ?, ?)", SQLite.Insert("t", cols))

	assert.Equal(t,
		"INSERT INTO `t` (`bot_id`, `id`, `name`) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE `name` = VALUES(`name`)",
		MySQL.Upsert("t", cols, []string{"bot_id", "id"}, []string{"name"}))
	assert.Equal(t,
		"INSERT INTO `t` (`bot_id`, `id`, `name`) VALUES (?, ?, ?) ON CONFLICT (`bot_id`, `id`) DO UPDATE SET `name` = excluded.`name`",
		SQLite.Upsert("t", cols, []string{"bot_id", "id"}, []string{"name"}))

	assert.Equal(t, "", Placeholders(0))
	assert.Equal(t, "?", Placeholders(1))
}

func TestConnectSQLite_UnicodeLower(t *testing.T) {
	cfg := config.Config{DBDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "bot.db")}
	db, dialect, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var got string
	require.NoError(t, db.QueryRow(`SELECT `+dialect.Lower("?"), "Привет ÄRGER Go").Scan(&got))
	assert.Equal(t, "привет ärger go", got)

	var null sql.NullString
	require.NoError(t, db.QueryRow(`SELECT `+dialect.Lower("NULL")).Scan(&null))
	assert.False(t, null.Valid)

	assert.Equal(t, "LOWER(`title`)", MySQL.Lower("`title`"))
}
