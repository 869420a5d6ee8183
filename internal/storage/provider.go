// Package storage defines the per-character image store and its transports.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/starford/imgbackup/internal/apperr"
)

// DefaultNamespace is the top-level folder that holds one folder per character.
const DefaultNamespace = "images"

// Transport is the storage API the sync pipeline depends on.
type Transport interface {
	// List returns the filenames stored for character under the namespace.
	List(ctx context.Context, character string) ([]string, error)
	// Write stores data as filename in the character's folder.
	Write(ctx context.Context, character, filename string, data []byte) error
}

// Dir returns the namespace-relative folder of a character, e.g. "images/Alice".
func Dir(namespace, character string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return path.Join(namespace, character)
}

// checkSegment rejects values that would not stay a single path segment.
func checkSegment(kind, s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) || strings.ContainsRune(s, 0) {
		return fmt.Errorf("storage: %s %q: %w", kind, s, apperr.ErrInvalidPath)
	}
	return nil
}
