package imgsync

import (
	"context"
	"log/slog"
	"strings"
)

// Inventory returns the lower-cased filenames already stored for character.
// A failed listing is logged and treated as an empty inventory so the run
// goes on.
func (s *Syncer) Inventory(ctx context.Context, character string) map[string]struct{} {
	names, err := s.store.List(ctx, character)
	if err != nil {
		s.logger.Warn("failed to list files",
			slog.String("character", character),
			slog.String("error", err.Error()))
		return map[string]struct{}{}
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[strings.ToLower(n)] = struct{}{}
	}
	return out
}
