package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vrt/internal/domain"
)

// Scanner discovers test case files under a root directory
type Scanner struct {
	extensions map[string]bool
	skipDirs   map[string]bool
}

// NewScanner creates a Scanner recognizing the given input extensions and
// skipping the given directory names
func NewScanner(extensions, skipDirs []string) *Scanner {
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[strings.ToLower(ext)] = true
	}
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{extensions: extMap, skipDirs: skipMap}
}

// Scan finds all test cases under root. The reference image for each case
// lives under refRoot at the case's relative path with a .png extension.
// Cases come back in walk order, which is lexical and therefore stable
// across reruns.
func (s *Scanner) Scan(root, refRoot string) ([]domain.Case, error) {
	var cases []domain.Case

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test directory does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") && name != "." && name != ".." {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if !s.extensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		cases = append(cases, domain.Case{
			Path:    path,
			RelPath: rel,
			Name:    d.Name(),
			RefPath: filepath.Join(refRoot, ReplaceExt(rel, ".png")),
		})
		return nil
	})

	return cases, err
}

// ReplaceExt swaps the extension of path for ext.
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
