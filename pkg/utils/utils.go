package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) (bool, error) {
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if st.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}

	return true, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it into place,
// so readers never observe a partially written file. The temporary file is removed on failure.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	fi, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = fi.Close()
			_ = os.Remove(fi.Name())
		}
	}()

	if _, err = fi.Write(data); err != nil {
		return err
	}
	if err = fi.Sync(); err != nil {
		return err
	}
	if err = fi.Chmod(perm); err != nil {
		return err
	}
	if err = fi.Close(); err != nil {
		return err
	}

	return os.Rename(fi.Name(), path)
}
