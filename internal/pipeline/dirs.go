package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/backmassage/gifbatch/internal/logging"
)

// Sentinels matched by [DirectoryError.Is].
var (
	ErrDirectoryCreation = errors.New("directory creation failed")
	ErrDirectoryListing  = errors.New("directory listing failed")
)

// DirOp names the directory operation that failed.
type DirOp string

const (
	OpCreate DirOp = "create"
	OpList   DirOp = "list"
)

// DirectoryError is a fatal batch failure while preparing or listing a
// directory.
type DirectoryError struct {
	Op   DirOp
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("%s directory %s: %v", e.Op, e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDirectoryCreation) and
// errors.Is(err, ErrDirectoryListing) work on the operation.
func (e *DirectoryError) Is(target error) bool {
	switch target {
	case ErrDirectoryCreation:
		return e.Op == OpCreate
	case ErrDirectoryListing:
		return e.Op == OpList
	}
	return false
}

// EnsureDirectories creates every missing path, ancestors included, and logs
// each creation. Existing directories are left alone, so a second call is a
// no-op. An existing non-directory at a path is an error.
func EnsureDirectories(log *logging.Logger, paths ...string) error {
	for _, p := range paths {
		fi, err := os.Stat(p)
		switch {
		case err == nil && fi.IsDir():
			continue
		case err == nil:
			return &DirectoryError{Op: OpCreate, Path: p, Err: fmt.Errorf("%w: not a directory", fs.ErrExist)}
		case !errors.Is(err, fs.ErrNotExist):
			return &DirectoryError{Op: OpCreate, Path: p, Err: err}
		}

		if err := os.MkdirAll(p, 0o755); err != nil {
			return &DirectoryError{Op: OpCreate, Path: p, Err: err}
		}
		log.Info("Created directory: %s", p)
	}
	return nil
}
