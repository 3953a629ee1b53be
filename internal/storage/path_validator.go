package storage

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"

	"go-watchlist/pkg/apierror"
)

// PathValidator confines file names to a single flat directory.
type PathValidator struct {
	rootAbs string
}

func NewPathValidator(root string) (*PathValidator, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	return &PathValidator{rootAbs: rootAbs}, nil
}

func (v *PathValidator) RootAbs() string {
	return v.rootAbs
}

// ResolveName returns the absolute path for name. Names carrying separators,
// dot segments or control characters are rejected.
func (v *PathValidator) ResolveName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == "." || trimmed == ".." {
		return "", apierror.New("INVALID_PATH", "file name is required", name, http.StatusBadRequest)
	}

	if hasControlCharacters(trimmed) {
		return "", apierror.New("INVALID_PATH", "file name contains invalid characters", name, http.StatusBadRequest)
	}

	if strings.ContainsAny(trimmed, `/\`) || strings.Contains(trimmed, "..") {
		return "", apierror.New("PATH_TRAVERSAL", "path traversal attempt detected", name, http.StatusForbidden)
	}

	resolved := filepath.Join(v.rootAbs, trimmed)
	if filepath.Dir(resolved) != v.rootAbs {
		return "", apierror.New("PATH_TRAVERSAL", "resolved path is outside storage root", name, http.StatusForbidden)
	}

	return resolved, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}
