package imgsync

import (
	"context"
	"fmt"
	"log/slog"
)

// Transfer downloads rawURL and stores it as filename for character.
// Nothing is written unless both steps succeed.
func (s *Syncer) Transfer(ctx context.Context, character, rawURL, filename string) error {
	data, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.logger.Error("failed to fetch",
			slog.String("character", character),
			slog.String("url", rawURL),
			slog.String("error", err.Error()))
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	if err := s.store.Write(ctx, character, filename, data); err != nil {
		s.logger.Error("upload failed",
			slog.String("character", character),
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return fmt.Errorf("store %s: %w", filename, err)
	}

	s.logger.Info("saved",
		slog.String("character", character),
		slog.String("filename", filename),
		slog.Int("bytes", len(data)))
	return nil
}
