package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port required")
	}
	return nil
}

func TestLoadOptionalMissingKeepsDefaults(t *testing.T) {
	s := &sample{Name: "default", Port: 1}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "none.yaml"), s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if found || s.Name != "default" {
		t.Errorf("found = %v, name = %q", found, s.Name)
	}
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	_ = os.WriteFile(path, []byte("name: x\nport: 0\n"), 0o644)
	if err := Load(path, &sample{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("CFG_TEST_NAME", "expanded")
	path := filepath.Join(t.TempDir(), "c.yaml")
	_ = os.WriteFile(path, []byte("name: ${CFG_TEST_NAME}\nport: 2\n"), 0o644)
	s := &sample{}
	found, err := LoadOptional(path, s)
	if err != nil || !found {
		t.Fatalf("LoadOptional: found=%v err=%v", found, err)
	}
	if s.Name != "expanded" {
		t.Errorf("name = %q", s.Name)
	}
}
