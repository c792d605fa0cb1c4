package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxConfigFileBytes bounds every file read on behalf of a resolver or
// detector. resolv.conf, /etc/environment and os-release are a few lines.
const MaxConfigFileBytes int64 = 1 << 20

// FileReader reads configuration files on behalf of resolvers.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads absolute paths from the local filesystem. Symlinks are
// followed (/etc/resolv.conf usually is one) but the target must be a
// regular file of at most MaxConfigFileBytes.
type OSFileReader struct{}

// ReadFile implements FileReader. Open errors are returned as-is so
// callers can test them with errors.Is.
func (OSFileReader) ReadFile(path string) ([]byte, error) {
	cleaned, err := cleanAbs(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(cleaned)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Checked on the open handle, not the path.
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", cleaned, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file (%s)", cleaned, info.Mode().Type())
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cleaned, err)
	}
	if int64(len(data)) > MaxConfigFileBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", cleaned, MaxConfigFileBytes)
	}
	return data, nil
}

func cleanAbs(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("path %q is not absolute", path)
	}
	return filepath.Clean(path), nil
}
