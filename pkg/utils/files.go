// =============================================================================
// COUNTER Report Generator - File Manager Utility
// =============================================================================
//
// This module manages the working directories of a processing run:
//   - Discovering usage exports in the input directory
//   - Archiving converted exports and their reports
//   - Removing archives past the retention period
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive after successful processing
//   - Output files are copied to output_archive
//   - Failed files remain in their original location
//   - An archived name already taken gets a time suffix (usage.20240115_143022.csv)
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the pipeline.
type FileManager struct {
	// InputDir is the directory where usage exports are placed.
	InputDir string

	// OutputDir is the directory where reports are written.
	OutputDir string

	// InputArchiveDir receives converted usage exports.
	InputArchiveDir string

	// OutputArchiveDir receives copies of written reports.
	OutputArchiveDir string

	// UseTimestampSubdirs files archives under YYYY/MM/DD subdirectories.
	UseTimestampSubdirs bool

	// ArchiveOnSuccess enables archiving. When false the archive methods
	// leave files where they are.
	ArchiveOnSuccess bool

	// now is the clock used for archive subdirectories and name suffixes.
	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

// EnsureDirectories creates every working directory that is configured.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DefaultInputPatterns match the usage export formats the pipeline reads.
var DefaultInputPatterns = []string{"*.csv", "*.xlsx", "*.xlsm"}

// DiscoverInputFiles lists the regular files in the input directory that
// match any of the patterns. Office lock files (~$usage.xlsx) are skipped.
//
// PARAMETERS:
//   - patterns: Glob patterns to match files (e.g., "*.csv").
//               If none are given, DefaultInputPatterns are used.
//
// RETURNS:
//   - A sorted slice of file paths, each listed once.
//   - An error if a pattern is malformed.
func (fm *FileManager) DiscoverInputFiles(patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultInputPatterns
	}

	var matches []string
	for _, pattern := range patterns {
		files, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory: %w", err)
		}
		matches = append(matches, files...)
	}

	result := lo.Filter(lo.Uniq(matches), func(file string, _ int) bool {
		if strings.HasPrefix(filepath.Base(file), "~$") {
			return false
		}
		info, err := os.Stat(file)
		return err == nil && info.Mode().IsRegular()
	})
	sort.Strings(result)
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a converted usage export into the input archive.
//
// RETURNS:
//   - The archived path (the original path when archiving is disabled).
//   - An error if the file cannot be moved.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	return fm.archive(fm.InputArchiveDir, filePath, true)
}

// ArchiveOutputFile copies a written report into the output archive. The
// report stays in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	return fm.archive(fm.OutputArchiveDir, filePath, false)
}

func (fm *FileManager) archive(archiveDir, filePath string, move bool) (string, error) {
	if !fm.ArchiveOnSuccess || archiveDir == "" {
		return filePath, nil
	}

	target, err := fm.archivePath(archiveDir, filePath)
	if err != nil {
		return "", err
	}

	if !move {
		if err := copyFile(filePath, target); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		return target, nil
	}

	// Rename fails across devices; fall back to copy and delete.
	if err := os.Rename(filePath, target); err != nil {
		if err := copyFile(filePath, target); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}
	return target, nil
}

// archivePath picks a free path for filePath under archiveDir and creates
// its directory.
func (fm *FileManager) archivePath(archiveDir, filePath string) (string, error) {
	now := fm.clock()

	dir := archiveDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(archiveDir, now.Format("2006"), now.Format("01"), now.Format("02"))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(filePath)
	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		return target, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	suffix := now.Format("20060102_150405")
	target = filepath.Join(dir, stem+"."+suffix+ext)
	for n := 2; ; n++ {
		if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
			return target, nil
		}
		target = filepath.Join(dir, fmt.Sprintf("%s.%s_%d%s", stem, suffix, n, ext))
	}
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// copyFile copies src to dst and syncs dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// =============================================================================
// RETENTION
// =============================================================================

// CleanOldArchives removes archived files last modified before maxAge ago.
// Date subdirectories left empty are removed too. A missing archive
// directory is not an error.
//
// RETURNS:
//   - The number of files removed.
//   - An error if the directory cannot be walked or a file cannot be removed.
func CleanOldArchives(archiveDir string, maxAge time.Duration) (int, error) {
	if _, err := os.Stat(archiveDir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var dirs []string

	err := filepath.WalkDir(archiveDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != archiveDir {
				dirs = append(dirs, path)
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to clean archives: %w", err)
	}

	// Deepest first, so a month empties after its days.
	for i := len(dirs) - 1; i >= 0; i-- {
		if entries, err := os.ReadDir(dirs[i]); err == nil && len(entries) == 0 {
			_ = os.Remove(dirs[i])
		}
	}

	return removed, nil
}
