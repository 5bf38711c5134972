package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultFolderSearchDepth = 6

var ErrFolderNotFound = errors.New("folder not found")

// locateFolder returns the first directory called name below start, looking at shallower
// directories before deeper ones. Hidden directories are not entered.
func locateFolder(start string, name string, maxDepth int) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty folder name", ErrFolderNotFound)
	}

	level := []string{start}
	for depth := 0; depth <= maxDepth && len(level) > 0; depth++ {
		var next []string
		for _, dir := range level {
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

			for _, entry := range entries {
				if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
					continue
				}
				path := filepath.Join(dir, entry.Name())
				if entry.Name() == name {
					return path, nil
				}
				next = append(next, path)
			}
		}
		level = next
	}

	return "", fmt.Errorf("%w: no directory named %q within %d levels of %s", ErrFolderNotFound, name, maxDepth, start)
}
