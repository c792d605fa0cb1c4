package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var unsafeOutputPrefixes = []string{"/etc/", "/proc/", "/sys/", "/dev/", "/boot/", "/sbin/", "/bin/", "/usr/"}

// ValidateOutputPath refuses report destinations inside system directories.
// Relative paths are checked after resolving them against the working
// directory.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path is empty")
	}
	cleaned, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve output path %q: %w", path, err)
	}
	for _, prefix := range unsafeOutputPrefixes {
		if strings.HasPrefix(cleaned+"/", prefix) {
			return fmt.Errorf("refusing to write to system path %q", cleaned)
		}
	}
	return nil
}

// WriteFile creates the parent directories of path and writes the content
// produced by write atomically: readers observe either the previous file
// or the complete new one, never a partial report.
func WriteFile(path string, write func(w io.Writer) error) (err error) {
	if err := ValidateOutputPath(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %q: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
