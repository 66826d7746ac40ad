package core

import (
	"os"
	"path/filepath"
)

// CreateFile creates a file at the specified relative path, & returns a file handle.
// Missing parent directories are created.
func CreateFile(relPath string) (*os.File, error) {
	absPath, err := filepath.Abs(relPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, err
	}

	return os.Create(absPath)
}

// WriteFile writes data to relPath through [CreateFile] and syncs it to disk.
func WriteFile(relPath string, data []byte) error {
	f, err := CreateFile(relPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// FileExists checks if a file exists and is not a directory.
func FileExists(filename string) (bool, error) {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
