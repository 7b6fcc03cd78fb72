package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/storage/database"
)

func sqliteConfig(t *testing.T) *core.Config {
	return &core.Config{
		Database: core.DatabaseConfig{
			Engine: database.SQLite,
			Path:   filepath.Join(t.TempDir(), "test.sqlite"),
		},
	}
}

func TestSetup(t *testing.T) {
	conf := sqliteConfig(t)
	assert.Equal(t, database.SQLite, database.Driver(conf))

	db, err := database.Setup(context.Background(), conf)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, table := range []string{"users", "courses"} {
		var cnt int
		err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&cnt)
		require.NoError(t, err)
		assert.Equal(t, 1, cnt, table)
	}

	// migrating an up-to-date database is a no-op
	assert.NoError(t, database.Migrate(db, database.Driver(conf)))
}

func TestRunMigration(t *testing.T) {
	conf := sqliteConfig(t)
	db, err := database.Setup(context.Background(), conf)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, database.RunMigration("down", db, database.SQLite))

	var cnt int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'courses'").Scan(&cnt)
	require.NoError(t, err)
	assert.Zero(t, cnt)

	assert.Error(t, database.RunMigration("up", db, "lol"))
}

func TestDriver(t *testing.T) {
	assert.Equal(t, database.Postgres, database.Driver(&core.Config{Database: core.DatabaseConfig{Engine: "postgres"}}))
}
