package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppliesPragmas(t *testing.T) {
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestDSN(t *testing.T) {
	dsn := DSN("/data/lib.db", DefaultConfig(), "mode=ro")
	assert.Equal(t, "file:/data/lib.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&mode=ro", dsn)
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrations := []string{
		`CREATE TABLE a (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE b (id INTEGER PRIMARY KEY)`,
	}
	require.NoError(t, Migrate(ctx, db, migrations))
	// Re-running is a no-op.
	require.NoError(t, Migrate(ctx, db, migrations))

	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 2, version)

	err = Migrate(ctx, db, migrations[:1])
	assert.ErrorContains(t, err, "newer than this binary")
}

func TestMigrateRollsBackFailedStep(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = Migrate(ctx, db, []string{`CREATE TABLE ok (id INTEGER)`, `CREATE TABLE broken (`})
	require.Error(t, err)

	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestVerifyIntegrity(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "healthy.db")
	db, err := Open(ctx, path, DefaultConfig())
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY, data TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	problems, err := VerifyIntegrity(ctx, path, false)
	require.NoError(t, err)
	assert.Nil(t, problems)

	problems, err = VerifyIntegrity(ctx, path, true)
	require.NoError(t, err)
	assert.Nil(t, problems)
}

func TestVerifyIntegrityNotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a sqlite file, just some text padding it out"), 0o600))

	problems, err := VerifyIntegrity(context.Background(), path, false)
	if err == nil {
		assert.NotEmpty(t, problems)
	}
}
