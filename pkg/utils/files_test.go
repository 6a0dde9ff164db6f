package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestManager(t)
	touch(t, filepath.Join(fm.InputDir, "b.csv"))
	touch(t, filepath.Join(fm.InputDir, "a.xlsx"))
	touch(t, filepath.Join(fm.InputDir, "~$a.xlsx"))
	touch(t, filepath.Join(fm.InputDir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "dir.csv"), 0755))

	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(fm.InputDir, "a.xlsx"),
		filepath.Join(fm.InputDir, "b.csv"),
	}, files)

	files, err = fm.DiscoverInputFiles("*.csv", "b.*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(fm.InputDir, "b.csv")}, files)

	_, err = fm.DiscoverInputFiles("[")
	assert.Error(t, err)
}

func TestArchive(t *testing.T) {
	fm := newTestManager(t)
	input := filepath.Join(fm.InputDir, "usage.csv")
	output := filepath.Join(fm.OutputDir, "report.xml")
	touch(t, input)
	touch(t, output)

	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "usage.csv"), archived)
	assert.NoFileExists(t, input)
	assert.FileExists(t, archived)

	archived, err = fm.ArchiveOutputFile(output)
	require.NoError(t, err)
	assert.FileExists(t, output)
	assert.FileExists(t, archived)
}

func TestArchive_NameTaken(t *testing.T) {
	fm := newTestManager(t)
	fm.now = func() time.Time { return time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC) }

	for i := 0; i < 3; i++ {
		touch(t, filepath.Join(fm.InputDir, "usage.csv"))
		_, err := fm.ArchiveInputFile(filepath.Join(fm.InputDir, "usage.csv"))
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(fm.InputArchiveDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"usage.csv",
		"usage.20240115_143022.csv",
		"usage.20240115_143022_2.csv",
	}, names)
}

func TestArchive_TimestampSubdirs(t *testing.T) {
	fm := newTestManager(t)
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC) }
	input := filepath.Join(fm.InputDir, "usage.csv")
	touch(t, input)

	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "2024", "03", "07", "usage.csv"), archived)
}

func TestArchive_Disabled(t *testing.T) {
	fm := newTestManager(t)
	fm.ArchiveOnSuccess = false
	input := filepath.Join(fm.InputDir, "usage.csv")
	touch(t, input)

	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, input, archived)
	assert.FileExists(t, input)
}

func TestCleanOldArchives(t *testing.T) {
	dir := t.TempDir()
	dated := filepath.Join(dir, "2023", "01", "02")
	require.NoError(t, os.MkdirAll(dated, 0755))

	old := filepath.Join(dir, "old.csv")
	oldDated := filepath.Join(dated, "old.xml")
	fresh := filepath.Join(dir, "fresh.csv")
	touch(t, old)
	touch(t, oldDated)
	touch(t, fresh)
	past := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(oldDated, past, past))

	removed, err := CleanOldArchives(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.NoDirExists(t, filepath.Join(dir, "2023"))

	removed, err = CleanOldArchives(filepath.Join(dir, "missing"), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
