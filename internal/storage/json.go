package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/starford/leadsync/internal/apperr"
	"github.com/starford/leadsync/internal/checksum"
	"github.com/starford/leadsync/internal/models"
)

// JSONFile keeps every record in one pretty-printed JSON object on disk.
//
// Each save reads the whole file, updates the mapping and rewrites the file
// through a temp file and rename. The mutex orders these cycles within one
// process only; separate processes sharing a file still race.
// A missing or unparsable file reads as an empty mapping.
type JSONFile struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	last atomic.Value // checksum of the last bytes written
}

var _ Store = (*JSONFile)(nil)

// NewJSONFile opens the store at path, writing an empty mapping when the
// file does not exist yet.
func NewJSONFile(path string, logger *slog.Logger) (*JSONFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &JSONFile{path: abs, logger: logger}
	s.last.Store("")

	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		if err := s.write(map[string]entry{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path returns the absolute path of the backing file.
func (s *JSONFile) Path() string {
	return s.path
}

// LastWrite returns the checksum of the content this store last wrote.
func (s *JSONFile) LastWrite() string {
	return s.last.Load().(string)
}

// Save upserts the record for email.
func (s *JSONFile) Save(_ context.Context, email, note string, summary *string) (models.NoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.read()
	e := entry{Note: note, Summary: summary}
	data[email] = e
	if err := s.write(data); err != nil {
		return models.NoteRecord{}, err
	}
	return e.record(email), nil
}

// Get returns the record for email.
func (s *JSONFile) Get(_ context.Context, email string) (models.NoteRecord, error) {
	e, ok := s.read()[email]
	if !ok {
		return models.NoteRecord{}, apperr.ErrNotFound
	}
	return e.record(email), nil
}

// GetAll returns every record.
func (s *JSONFile) GetAll(_ context.Context) (map[string]models.NoteRecord, error) {
	data := s.read()
	out := make(map[string]models.NoteRecord, len(data))
	for email, e := range data {
		out[email] = e.record(email)
	}
	return out, nil
}

// Close is a no-op; the file is not held open between calls.
func (s *JSONFile) Close() error {
	return nil
}

func (s *JSONFile) read() map[string]entry {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("storage: read failed, using empty store",
				slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return map[string]entry{}
	}
	var data map[string]entry
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("storage: corrupt store file, using empty store",
			slog.String("path", s.path), slog.String("error", err.Error()))
		return map[string]entry{}
	}
	if data == nil {
		data = map[string]entry{}
	}
	return data
}

func (s *JSONFile) write(data map[string]entry) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("%w: encode: %w", apperr.ErrStorage, err)
	}
	content := buf.Bytes()
	if err := writeAtomic(s.path, content); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	s.last.Store(checksum.Sum(content))
	return nil
}

// writeAtomic writes content to path: tmp file → fsync → rename.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".leadsync-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	success = true
	return nil
}
