package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
)

// AllowedExt checks if a file extension is in the default allowed set.
func AllowedExt(ext string) bool {
	return allowedIn(ext, constants.AllowedExtensions)
}

func allowedIn(ext string, exts map[string]struct{}) bool {
	ext = constants.NormalizeExt(ext)
	if ext == "" {
		return false
	}
	_, ok := exts[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// ResolveWithin returns the absolute, symlink-resolved form of path when it
// lies inside one of roots. With no roots every path is refused.
func ResolveWithin(path string, roots []string) (string, error) {
	target, err := realPath(path)
	if err != nil {
		return "", common.NewAppError("INVALID_ARGUMENT", "invalid path", common.ErrInvalidInput)
	}
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		root, err := realPath(r)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return target, nil
	}
	return "", common.NewAppError("PERMISSION_DENIED", "path is outside the intake directories", common.ErrForbidden)
}

// realPath is filepath.Abs with symlinks resolved in the path, or in its
// parent when the file itself does not exist yet.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs)), nil
	}
	return filepath.Clean(abs), nil
}
