package utils

import "strings"

// Value dereferences an optional wire field, yielding the zero value when it is absent.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func Ptr[T any](v T) *T { return &v }

// FirstNonEmpty returns the first candidate that is not blank.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

// JoinURL joins a base URL and a relative API path with exactly one slash between them.
// Trailing slashes on path are kept because the backend routes require them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
