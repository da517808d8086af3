package repcat

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	reperrors "repcat/errors"
)

// SourceSizes stats every input path and returns the byte lengths in input
// order. Every path must name an existing regular file; the first violation
// aborts with no output side effects.
func SourceSizes(paths []string) ([]int64, error) {
	if len(paths) == 0 {
		return nil, reperrors.ErrNoSources
	}
	sizes := make([]int64, len(paths))
	for i, path := range paths {
		fi, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", reperrors.ErrSourceMissing, path)
		}
		if err != nil {
			return nil, fmt.Errorf("stat source %s: %w", path, err)
		}
		if fi.IsDir() {
			return nil, fmt.Errorf("source %s is a directory", path)
		}
		sizes[i] = fi.Size()
	}
	return sizes, nil
}
