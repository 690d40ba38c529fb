// =============================================================================
// ExcelTools - File Management Utilities
// =============================================================================
//
// Shared filesystem helpers used across the feature modules: collision-free
// naming, moves and copies that cross filesystems, backups, directory
// listings filtered by extension, and stamped output names for reports.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileExists checks whether a path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists checks whether a path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir creates a directory and its parents if missing.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// UniquePath returns path unchanged when free, otherwise the first
// "name_copyN.ext" variant that does not exist yet.
func UniquePath(path string) string {
	if !FileExists(path) && !DirExists(path) {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_copy%d%s", stem, i, ext))
		if !FileExists(candidate) && !DirExists(candidate) {
			return candidate
		}
	}
}

// CopyFile copies src to dst, creating parent directories. Permissions of
// the source are preserved.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Sync()
}

// MoveFile renames src to dst, falling back to copy-and-delete when the
// rename crosses filesystems.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}

// MoveToSubfolder moves a file into the named subfolder of its own
// directory, picking a collision-free name. It returns the new path.
func MoveToSubfolder(path, folder string) (string, error) {
	dst := UniquePath(filepath.Join(filepath.Dir(path), folder, filepath.Base(path)))
	if err := MoveFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// BackupFile copies a file next to itself with a timestamp suffix and
// returns the backup path.
func BackupFile(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	backup := fmt.Sprintf("%s_backup_%s%s", stem, time.Now().Format("20060102_150405"), ext)
	backup = UniquePath(backup)
	if err := CopyFile(path, backup); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return backup, nil
}

// ListFiles returns the files of a directory with one of the given
// extensions (dot included, case-insensitive), newest first. Office lock
// files are skipped. Empty extensions list every file.
func ListFiles(dir string, extensions ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	type candidate struct {
		path  string
		mtime time.Time
	}
	var files []candidate

	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if len(extensions) > 0 {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			ok := false
			for _, want := range extensions {
				if ext == strings.ToLower(want) {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{filepath.Join(dir, e.Name()), info.ModTime()})
	}

	sort.Slice(files, func(a, b int) bool {
		return files[a].mtime.After(files[b].mtime)
	})
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// CleanOldFiles removes files of a directory older than maxAge and
// returns how many were deleted.
func CleanOldFiles(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// FormatSize renders a byte count for display.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// StampedName builds an output file name "prefix_TIMESTAMP_SHORTID.ext"
// so concurrent runs never collide.
func StampedName(prefix, ext string) string {
	short := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%s%s", prefix, time.Now().Format("20060102_150405"), short, ext)
}
