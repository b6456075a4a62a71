package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fsys := OSFileSystem{}

	assert.True(t, fsys.Exists("filesystem.go"))
	assert.False(t, fsys.Exists("nonexistent_file_xyz.go"))
}

func TestOSFileSystem_ReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "torino"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), nil, 0o644))

	entries, err := OSFileSystem{}.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ".DS_Store", entries[0].Name())
	assert.Equal(t, "torino", entries[1].Name())
	assert.True(t, entries[1].IsDir())
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.WriteFile("/results/torino/single_run/scenario_A/sim_stats.csv", []byte("a,b\n1,2\n"))

	data, err := mfs.ReadFile("/results/torino/single_run/scenario_A/sim_stats.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))

	f, err := mfs.Open("/results/torino/single_run/scenario_A/sim_stats.csv")
	require.NoError(t, err)
	defer f.Close()
	all, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, data, all)

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, "sim_stats.csv", info.Name())
	assert.EqualValues(t, len(data), info.Size())
}

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.WriteFile("/results/torino/single_run/scenario_B/sim_stats.csv", nil)
	mfs.WriteFile("/results/torino/single_run/scenario_A/sim_stats.csv", nil)
	mfs.WriteFile("/results/torino/.DS_Store", nil)
	mfs.MkdirAll("/results/milano")

	entries, err := mfs.ReadDir("/results")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
		assert.True(t, e.IsDir())
	}
	assert.Equal(t, []string{"milano", "torino"}, names)

	entries, err = mfs.ReadDir("/results/torino")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ".DS_Store", entries[0].Name())
	assert.False(t, entries[0].IsDir())
	assert.Equal(t, "single_run", entries[1].Name())

	entries, err = mfs.ReadDir("/results/torino/single_run")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "scenario_A", entries[0].Name())
}

func TestMemoryFileSystem_NotExist(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.ReadFile("/missing.csv")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = mfs.Open("/missing.csv")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = mfs.ReadDir("/missing")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	assert.False(t, mfs.Exists("/missing"))
}

func TestMemoryFileSystem_StatDir(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.WriteFile("/r/c/t/s/sim_stats.csv", []byte("x"))

	info, err := mfs.Stat("/r/c/t/s")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, info.Mode().IsDir())
	assert.True(t, mfs.Exists("/r/c"))
}
