package mkfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	}
	return false, err
}

// DirExists reports whether path exists. If it exists but is no directory
// the result is true together with an error.
func DirExists(path string) (bool, error) {
	st, err := os.Stat(path)
	switch {
	case err == nil:
		if !st.IsDir() {
			return true, fmt.Errorf("%s is no directory", path)
		}
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	}
	return false, err
}

// Within reports whether path is dir or lies below dir. Both must be clean
// and either both relative or both absolute.
func Within(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
