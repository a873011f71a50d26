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
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeFile(t, "port: 9000\n")
	cfg := sample{Name: "default", Port: 1}
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "default" || cfg.Port != 9000 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_TOKEN", "s3cret")
	path := writeFile(t, "port: 1\ntoken: ${SAMPLE_TOKEN}\n")
	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Token != "s3cret" {
		t.Errorf("token = %q", cfg.Token)
	}
}

func TestLoadValidates(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	var cfg sample
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeFile(t, "port: [\n")
	var cfg sample
	if err := Load(path, &cfg); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg := sample{Name: "default", Port: 8000}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("found = true for missing file")
	}
	if cfg.Port != 8000 {
		t.Errorf("defaults changed: %+v", cfg)
	}
}

func TestLoadOptionalMissingFileStillValidates(t *testing.T) {
	var cfg sample
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); err == nil {
		t.Error("invalid defaults should fail validation")
	}
}

func TestLoadOptionalExistingFile(t *testing.T) {
	path := writeFile(t, "port: 9100\n")
	cfg := sample{Port: 8000}
	found, err := LoadOptional(path, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !found || cfg.Port != 9100 {
		t.Errorf("found = %v, cfg = %+v", found, cfg)
	}
}
