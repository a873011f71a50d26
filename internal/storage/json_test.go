package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/leadsync/internal/checksum"
)

func TestNewJSONFileCreatesEmptyMapping(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "notes_data.json")
	if _, err := NewJSONFile(p, quietLogger()); err != nil {
		t.Fatalf("NewJSONFile: %v", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(string(data)) != "{}" {
		t.Errorf("content = %q, want {}", data)
	}
}

func TestJSONFileKeepsExistingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes_data.json")
	seed := `{"a@example.com": {"note": "kept", "summary": null}}`
	if err := os.WriteFile(p, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewJSONFile(p, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Note != "kept" || got.Summary != nil {
		t.Errorf("got %+v", got)
	}
}

func TestJSONFileCorruptReadsEmpty(t *testing.T) {
	for name, content := range map[string]string{
		"garbage":     "{not json",
		"wrong shape": `["a", "b"]`,
		"wrong value": `{"a@example.com": 42}`,
		"null":        "null",
		"empty":       "",
	} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "notes_data.json")
			if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			s, err := NewJSONFile(p, quietLogger())
			if err != nil {
				t.Fatalf("NewJSONFile: %v", err)
			}
			all, err := s.GetAll(context.Background())
			if err != nil || len(all) != 0 {
				t.Errorf("GetAll = %v, %v; want empty", all, err)
			}
			if _, err := s.Get(context.Background(), "a@example.com"); err == nil {
				t.Error("Get on corrupt store should report not found")
			}

			// The next save replaces the corrupt content.
			if _, err := s.Save(context.Background(), "b@example.com", "fresh", nil); err != nil {
				t.Fatalf("Save: %v", err)
			}
			all, _ = s.GetAll(context.Background())
			if len(all) != 1 {
				t.Errorf("after save len = %d, want 1", len(all))
			}
		})
	}
}

func TestJSONFileMissingAfterInit(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes_data.json")
	s, err := NewJSONFile(p, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	_ = os.Remove(p)

	all, err := s.GetAll(context.Background())
	if err != nil || len(all) != 0 {
		t.Errorf("GetAll = %v, %v; want empty", all, err)
	}
}

func TestJSONFileFormat(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes_data.json")
	s, err := NewJSONFile(p, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	summary := "Café meeting <Friday> & 中文."
	if _, err := s.Save(context.Background(), "zoë@example.com", "Réunion au café", &summary); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	for _, want := range []string{"Café meeting <Friday> & 中文.", "zoë@example.com", "\n  \"zoë@example.com\": {\n    \"note\""} {
		if !strings.Contains(text, want) {
			t.Errorf("file missing %q:\n%s", want, text)
		}
	}

	var decoded map[string]map[string]*string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if got := decoded["zoë@example.com"]; got == nil || *got["note"] != "Réunion au café" {
		t.Errorf("decoded = %v", decoded)
	}
	if s.LastWrite() != checksum.Sum(raw) {
		t.Error("LastWrite should match the file checksum")
	}
}

func TestJSONFileNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	s, err := NewJSONFile(filepath.Join(dir, "notes_data.json"), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := s.Save(context.Background(), "a@example.com", "n", nil); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir entries = %v, want only the store file", names)
	}
}

func TestJSONFileWriteFailure(t *testing.T) {
	dir := t.TempDir()
	s, err := NewJSONFile(filepath.Join(dir, "notes_data.json"), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	if _, err := s.Save(context.Background(), "a@example.com", "n", nil); err == nil {
		t.Fatal("expected write failure")
	}
}
