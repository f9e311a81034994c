package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedTrying/malaysiasafd/migrations"
)

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.up.sql":     {Data: []byte("CREATE INDEX x ON t (c);")},
		"002_add_index.down.sql":   {Data: []byte("DROP INDEX x;")},
		"001_create_table.up.sql":  {Data: []byte("CREATE TABLE t (c INT);")},
		"003_orphan_down.down.sql": {Data: []byte("SELECT 1;")},
		"README.md":                {Data: []byte("ignored")},
		"nounderscore.up.sql":      {Data: []byte("ignored")},
	}

	got, err := ReadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "001", got[0].Version)
	assert.Equal(t, "create_table", got[0].Name)
	assert.Equal(t, "create table", got[0].Title)
	assert.Empty(t, got[0].DownSQL)

	assert.Equal(t, "002", got[1].Version)
	assert.Equal(t, "DROP INDEX x;", got[1].DownSQL)
	assert.Equal(t, calculateChecksum("CREATE INDEX x ON t (c);"), got[1].Checksum)
}

func TestEmbeddedMigrationsAreOrderedAndPaired(t *testing.T) {
	got, err := ReadMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i, m := range got {
		assert.NotEmpty(t, m.DownSQL, "migration %s has no down script", m.Version)
		assert.Len(t, m.Checksum, 64)
		if i > 0 {
			assert.Less(t, got[i-1].Version, m.Version)
		}
	}
}

func TestCalculateChecksumIsStable(t *testing.T) {
	a := calculateChecksum("SELECT 1;")
	b := calculateChecksum("SELECT 1;")
	c := calculateChecksum("SELECT 2;")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
