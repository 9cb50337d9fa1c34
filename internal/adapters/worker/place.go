package worker

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

const placeAttempts = 16

// place moves a fully populated staging directory to dest. When dest already
// exists it is moved aside first, so the last writer wins and dest is never
// observed half written.
func place(staging, dest string) error {
	var lastErr error
	for range placeAttempts {
		err := os.Rename(staging, dest)
		if err == nil {
			return nil
		}
		lastErr = err

		if _, statErr := os.Stat(dest); statErr != nil {
			if errors.Is(statErr, fs.ErrNotExist) {
				continue
			}
			return zerr.Wrap(err, "failed to place version directory")
		}

		trash, err := os.MkdirTemp(filepath.Dir(dest), ".trash-"+filepath.Base(dest)+"-")
		if err != nil {
			return zerr.Wrap(err, "failed to create trash directory")
		}
		if err := os.Rename(dest, filepath.Join(trash, "old")); err != nil && !errors.Is(err, fs.ErrNotExist) {
			_ = os.RemoveAll(trash)
			lastErr = err
			continue
		}
		err = os.Rename(staging, dest)
		_ = os.RemoveAll(trash)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return zerr.With(zerr.Wrap(lastErr, "failed to place version directory"), "path", dest)
}
