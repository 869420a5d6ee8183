package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/imgbackup/internal/models"
)

// card accepts both the v2 layout ({name, data:{first_mes}}) and the flat
// layout where first_mes sits at the top level.
type card struct {
	Name     string               `json:"name" yaml:"name"`
	FirstMes models.Messages      `json:"first_mes" yaml:"first_mes"`
	Data     models.CharacterData `json:"data" yaml:"data"`
}

// IsCardFile reports whether path has a card file extension.
func IsCardFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// DecodeCard parses a JSON or YAML card, chosen by the file extension.
func DecodeCard(path string, data []byte) (models.Character, error) {
	var c card
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		return models.Character{}, fmt.Errorf("catalog: unsupported card format: %s", path)
	}
	if err != nil {
		return models.Character{}, fmt.Errorf("catalog: decode %s: %w", path, err)
	}

	out := models.Character{Name: c.Name, Data: c.Data}
	if out.Data.FirstMes == nil {
		out.Data.FirstMes = c.FirstMes
	}
	return out, nil
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
