package export

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Exists reports whether the destination path is already taken. The core
// never overwrites silently: callers check this and pass their user's
// explicit confirmation down as the overwrite flag.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFile replaces the destination with data, staging through a temp file
// in the same directory so the replace is a rename.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return errors.Wrap(err, "stage export file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "write export file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "close export file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "replace export file")
	}
	return nil
}
