package storage

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"

	"go-employee-api/pkg/apierror"
)

// PathValidator confines object names to a single flat directory.
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

// ResolvePath maps an object name to its absolute path under the root.
// Names with separators, control characters or dot segments are rejected.
func (v *PathValidator) ResolvePath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apierror.New("INVALID_NAME", "object name cannot be empty", "", http.StatusBadRequest)
	}

	if strings.Contains(name, "\x00") || hasControlCharacters(name) {
		return "", apierror.New("INVALID_NAME", "object name contains invalid characters", name, http.StatusBadRequest)
	}

	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", apierror.New("PATH_TRAVERSAL", "object name must not contain path segments", name, http.StatusForbidden)
	}

	resolvedAbs, err := filepath.Abs(filepath.Join(v.rootAbs, name))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	if !isWithinRoot(v.rootAbs, resolvedAbs) || resolvedAbs == v.rootAbs {
		return "", apierror.New("PATH_TRAVERSAL", "resolved path is outside storage root", name, http.StatusForbidden)
	}

	return resolvedAbs, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	if candidateAbs == rootAbs {
		return true
	}

	rootWithSeparator := rootAbs + string(filepath.Separator)
	return strings.HasPrefix(candidateAbs, rootWithSeparator)
}
