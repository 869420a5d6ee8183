package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/imgbackup/internal/models"
)

// Row is one indexed character card.
type Row struct {
	Path      string
	Name      string
	Messages  []string
	Checksum  string
	UpdatedAt time.Time
}

// Upsert inserts or replaces the row for a card file.
func (db *DB) Upsert(r Row) error {
	msgs := r.Messages
	if msgs == nil {
		msgs = []string{}
	}
	msgsJSON, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("catalog: encode messages: %w", err)
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}
	_, err = db.conn.Exec(`
		INSERT INTO characters (path, name, messages, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name       = excluded.name,
			messages   = excluded.messages,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, r.Path, r.Name, string(msgsJSON), r.Checksum, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert %s: %w", r.Path, err)
	}
	return nil
}

// Delete removes the row for a card file.
func (db *DB) Delete(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM characters WHERE path = ?`, path); err != nil {
		return fmt.Errorf("catalog: delete %s: %w", path, err)
	}
	return nil
}

// AllChecksums maps every indexed card path to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM characters`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Characters returns every indexed character ordered by name.
func (db *DB) Characters(ctx context.Context) ([]models.Character, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT name, messages FROM characters ORDER BY name, path`)
	if err != nil {
		return nil, fmt.Errorf("catalog: characters: %w", err)
	}
	defer rows.Close()

	var out []models.Character
	for rows.Next() {
		var name, msgsJSON string
		if err := rows.Scan(&name, &msgsJSON); err != nil {
			return nil, err
		}
		var msgs models.Messages
		if err := json.Unmarshal([]byte(msgsJSON), &msgs); err != nil {
			return nil, fmt.Errorf("catalog: decode messages for %s: %w", name, err)
		}
		out = append(out, models.Character{Name: name, Data: models.CharacterData{FirstMes: msgs}})
	}
	return out, rows.Err()
}

// Names returns the distinct character names ordered alphabetically.
func (db *DB) Names(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT name FROM characters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: names: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
