package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	. "github.com/redexp/tjs-postfix-lsp/types"
	"go.lsp.dev/uri"
)

// UriToPath returns the file system path of a file uri. Plain paths are
// returned as is.
func UriToPath(u Uri) (string, error) {
	if !strings.Contains(u, "://") {
		return u, nil
	}

	if !strings.HasPrefix(u, uri.FileScheme+"://") {
		return "", fmt.Errorf("not a file uri: %s", u)
	}

	parsed, err := uri.Parse(u)

	if err != nil {
		return "", err
	}

	return parsed.Filename(), nil
}

// ToUri turns a path into a file uri, leaving uris untouched.
func ToUri(path string) Uri {
	if strings.Contains(path, "://") {
		return path
	}

	return string(uri.File(path))
}

// NormalizeUri accepts either a path or a file uri and returns the file uri.
// Uris of other schemes, like untitled:, are returned unchanged.
func NormalizeUri(u Uri) (Uri, error) {
	if scheme := Scheme(u); scheme != "" && scheme != uri.FileScheme {
		return u, nil
	}

	path, err := UriToPath(u)

	if err != nil {
		return "", err
	}

	return ToUri(path), nil
}

// Scheme returns the lower-cased scheme of u, or "" when u is a plain path.
func Scheme(u string) string {
	i := strings.IndexByte(u, ':')

	// single letter before the colon is a windows drive
	if i < 2 {
		return ""
	}

	for j, r := range u[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return ""
		}
	}

	return strings.ToLower(u[:i])
}

func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

func P[T ~string | ~int32 | ~uint32 | ~bool](src T) *T {
	return &src
}
