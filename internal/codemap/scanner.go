package codemap

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sourceExt is the file extension the scanner considers eligible
const sourceExt = ".py"

// Scanner enumerates eligible source files strictly beneath a sandboxed root
type Scanner struct {
	root        string // absolute, symlink-resolved
	maxFiles    int
	excludeDirs map[string]bool
}

// NewScanner creates a scanner rooted at root. The root must exist.
func NewScanner(root string, maxFiles int, excludeDirs []string) (*Scanner, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	exclude := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		exclude[d] = true
	}

	return &Scanner{
		root:        resolved,
		maxFiles:    maxFiles,
		excludeDirs: exclude,
	}, nil
}

// Root returns the resolved scan root
func (s *Scanner) Root() string {
	return s.root
}

// Resolve resolves an untrusted subpath strictly inside the root. It rejects
// paths that escape the root, whether lexically (via "..") or through
// symlinks, with ErrPathEscape.
func (s *Scanner) Resolve(subpath string) (string, error) {
	if subpath == "" {
		subpath = "."
	}
	joined := filepath.Clean(filepath.Join(s.root, subpath))
	if !s.contains(joined) {
		return "", ErrPathEscape
	}

	// A path that exists must also stay inside the root after following
	// symlinks. Nonexistent paths pass through and fail later as NotFound.
	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if os.IsNotExist(err) {
			return joined, nil
		}
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !s.contains(resolved) {
		return "", ErrPathEscape
	}
	return resolved, nil
}

func (s *Scanner) contains(path string) bool {
	return path == s.root || strings.HasPrefix(path, s.root+string(filepath.Separator))
}

// ListFiles enumerates eligible source files under dir in lexicographic
// order, skipping excluded directory names and silently capping the result
// at the configured file limit.
func (s *Scanner) ListFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && s.excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != sourceExt {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	// Full segment-wise order so repeated scans of an unchanged tree see the
	// same files, then cap silently.
	sort.Slice(files, func(i, j int) bool {
		return pathLess(files[i], files[j])
	})
	if s.maxFiles > 0 && len(files) > s.maxFiles {
		files = files[:s.maxFiles]
	}
	return files, nil
}

// pathLess compares paths segment by segment, so a file inside a directory
// sorts before a sibling file sharing the directory name as a prefix
// ("a/b/c.py" before "a.py", unlike a raw byte compare).
func pathLess(a, b string) bool {
	as := strings.Split(a, string(filepath.Separator))
	bs := strings.Split(b, string(filepath.Separator))
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

// ModulePath derives the dotted module path of a file relative to the root
func (s *Scanner) ModulePath(file string) string {
	rel, err := filepath.Rel(s.root, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.Join(strings.Split(rel, string(filepath.Separator)), ".")
}
