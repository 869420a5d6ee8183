package catalog

import (
	"context"

	"github.com/starford/imgbackup/internal/models"
)

// Index is the read side of the catalog used by the API and MCP layers.
type Index interface {
	Characters(ctx context.Context) ([]models.Character, error)
	Names(ctx context.Context) ([]string, error)
}

var _ Index = (*DB)(nil)
