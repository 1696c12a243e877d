package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "rixa")
	var s sample
	if err := Load(writeConfig(t, "name: ${SAMPLE_NAME}\ncount: 2\n"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "rixa" || s.Count != 2 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	var s sample
	err := Load(writeConfig(t, "count: -1\n"), &s)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadIfExists_MissingKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Count: 1}
	if err := LoadIfExists(filepath.Join(t.TempDir(), "nope.yaml"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "default" {
		t.Errorf("defaults lost: %+v", s)
	}

	bad := sample{Count: -3}
	if err := LoadIfExists(filepath.Join(t.TempDir(), "nope.yaml"), &bad); err == nil {
		t.Error("defaults are still validated")
	}
}
