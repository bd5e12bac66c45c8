package migration

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations_AreSequentialPairs(t *testing.T) {
	src, err := newSource(nil)
	require.NoError(t, err)
	defer src.Close()

	var versions []uint
	version, err := src.First()
	require.NoError(t, err)
	for {
		versions = append(versions, version)

		up, _, err := src.ReadUp(version)
		require.NoError(t, err, "version %d has no up file", version)
		body, err := io.ReadAll(up)
		require.NoError(t, err)
		_ = up.Close()
		assert.Contains(t, strings.ToUpper(string(body)), "CREATE TABLE")

		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "version %d has no down file", version)
		_ = down.Close()

		version, err = src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, []uint{1, 2, 3, 4, 5}, versions)
}

func TestEmbeddedMigrations_LiveUniqueIndexes(t *testing.T) {
	src, err := newSource(nil)
	require.NoError(t, err)
	defer src.Close()

	read := func(version uint) string {
		r, _, err := src.ReadUp(version)
		require.NoError(t, err)
		defer r.Close()
		body, err := io.ReadAll(r)
		require.NoError(t, err)
		return string(body)
	}

	assert.Contains(t, read(2), "ON plans (name) WHERE is_deleted = FALSE")
	assert.Contains(t, read(3), "ON subscriptions (user_id) WHERE is_deleted = FALSE")
	assert.Contains(t, read(3), "CHECK (total_units >= 0)")
}

func TestNewSource_WithFS(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000001_init.up.sql":   {Data: []byte("CREATE TABLE t (id INT);")},
		"sql/000001_init.down.sql": {Data: []byte("DROP TABLE t;")},
	}

	src, err := newSource([]Option{WithFS(fsys, "sql")})
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}
