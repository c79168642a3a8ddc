package pipeline

import (
	"os"
	"path/filepath"
	"strings"
)

// Recognized input extensions (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".wmv": true,
}

// IsVideoFile reports whether name carries a recognized extension,
// case-insensitively.
func IsVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// Discover lists inputDir (not recursively) and returns the paths of the
// recognized video files in the order the filesystem reports them. The
// listing is deliberately left unsorted. Subdirectories are skipped even
// when their names look like videos.
func Discover(inputDir string) ([]string, error) {
	d, err := os.Open(inputDir)
	if err != nil {
		return nil, &DirectoryError{Op: OpList, Path: inputDir, Err: err}
	}
	defer d.Close()

	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, &DirectoryError{Op: OpList, Path: inputDir, Err: err}
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsVideoFile(e.Name()) {
			continue
		}
		if !e.Type().IsRegular() && !isFileSymlink(filepath.Join(inputDir, e.Name())) {
			continue
		}
		files = append(files, filepath.Join(inputDir, e.Name()))
	}
	return files, nil
}

// isFileSymlink reports whether path is a symlink resolving to a regular file.
func isFileSymlink(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
