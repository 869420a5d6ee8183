package catalog

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sync walks the cards directory and brings the catalog up to date:
//   - new/changed cards are decoded and upserted
//   - cards removed from disk are deleted from the catalog
//
// A card that fails to decode is logged and skipped.
func Sync(db *DB, dir string, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{})
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !IsCardFile(p) {
			return nil
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		disk[rel] = struct{}{}

		data, readErr := os.ReadFile(p)
		if readErr != nil {
			logger.Warn("catalog: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
			return nil
		}
		if checksums[rel] == checksum(data) {
			return nil
		}
		if idxErr := indexCard(db, rel, data); idxErr != nil {
			logger.Warn("catalog: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
		} else {
			logger.Debug("catalog: indexed", slog.String("path", rel))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("catalog: walk %s: %w", dir, err)
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if delErr := db.Delete(p); delErr != nil {
			logger.Warn("catalog: delete failed", slog.String("path", p), slog.String("error", delErr.Error()))
		} else {
			logger.Debug("catalog: removed stale", slog.String("path", p))
		}
	}
	return nil
}

// indexCard decodes data and upserts it under rel.
func indexCard(db *DB, rel string, data []byte) error {
	c, err := DecodeCard(rel, data)
	if err != nil {
		return err
	}
	return db.Upsert(Row{
		Path:      rel,
		Name:      c.DisplayName(),
		Messages:  c.Data.FirstMes,
		Checksum:  checksum(data),
		UpdatedAt: time.Now().UTC(),
	})
}
