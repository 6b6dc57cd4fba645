package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
)

var defaultExcludes = []string{".git", "node_modules", ".venv", "__pycache__", "target", "vendor"}

// scanDir lists every regular file under root as an upload path whose first
// segment is the directory's own name, the same shape a browser folder
// upload produces. Directories named in exclude are skipped entirely.
func scanDir(root string, exclude []string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	base := filepath.Base(abs)

	var paths []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != abs && slices.Contains(exclude, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		paths = append(paths, base+"/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files found under %s", root)
	}
	return paths, nil
}
