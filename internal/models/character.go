// Package models defines the domain types for imgbackup.
package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnknownName is used when a character record carries no name.
const UnknownName = "Unknown"

// Character is a profile record whose greeting text is scanned for images.
type Character struct {
	Name string        `json:"name" yaml:"name"`
	Data CharacterData `json:"data" yaml:"data"`
}

// CharacterData holds the free-text fields of a character.
type CharacterData struct {
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	FirstMes Messages `json:"first_mes" yaml:"first_mes"`
}

// DisplayName returns the character name, falling back to UnknownName.
func (c Character) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Data.Name != "":
		return c.Data.Name
	default:
		return UnknownName
	}
}

// Messages is a greeting field that may be encoded either as a single
// string or as a list of strings. An empty string decodes to no messages.
type Messages []string

// UnmarshalJSON accepts a string, a list of strings, or null.
func (m *Messages) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := messagesFrom(raw)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// UnmarshalYAML accepts a scalar string or a sequence of strings.
func (m *Messages) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	out, err := messagesFrom(raw)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

func messagesFrom(raw any) (Messages, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return Messages{v}, nil
	case []any:
		out := make(Messages, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("first_mes: unsupported element type %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("first_mes: unsupported type %T", raw)
	}
}
