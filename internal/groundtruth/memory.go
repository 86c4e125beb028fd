package groundtruth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MemoryStore serves records loaded from JSON files.
type MemoryStore struct {
	records map[Key]Record
}

func NewMemoryStore(records map[string]Record) *MemoryStore {
	s := &MemoryStore{records: make(map[Key]Record, len(records))}
	for k, r := range records {
		s.records[ParseKey(k)] = r
	}
	return s
}

func (s *MemoryStore) Len() int { return len(s.records) }

// Entries returns all records ordered by key.
func (s *MemoryStore) Entries() []Entry {
	out := make([]Entry, 0, len(s.records))
	for k, r := range s.records {
		out = append(out, Entry{Key: k, Record: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Source != out[j].Key.Source {
			return out[i].Key.Source < out[j].Key.Source
		}
		return out[i].Key.DocIndex < out[j].Key.DocIndex
	})
	return out
}

type Entry struct {
	Key    Key
	Record Record
}

func (s *MemoryStore) Lookup(_ context.Context, source string, index, total int) (Record, bool, error) {
	if err := validateIndex(index, total); err != nil {
		return Record{}, false, nil
	}
	for _, k := range Keys(source, index, total) {
		if r, ok := s.records[k]; ok {
			return r, true, nil
		}
	}
	return Record{}, false, nil
}

// LoadFile reads one JSON object mapping source keys ("letters.pdf",
// "letters.pdf#2") to records. Malformed records are skipped with a warning.
func LoadFile(path string, logger *slog.Logger) (*MemoryStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ground truth %s: %w", path, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ground truth %s: %w", path, err)
	}

	s := &MemoryStore{records: make(map[Key]Record, len(raw))}
	for key, msg := range raw {
		s.add(key, msg, logger)
	}
	logger.Info("groundtruth.loaded", "path", path, "records", len(s.records), "skipped", len(raw)-len(s.records))
	return s, nil
}

// LoadDir reads every <key>.json file in dir; each holds a single record.
func LoadDir(dir string, logger *slog.Logger) (*MemoryStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read ground truth dir %s: %w", dir, err)
	}

	s := &MemoryStore{records: make(map[Key]Record)}
	seen := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		seen++
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read ground truth %s: %w", e.Name(), err)
		}
		s.add(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())), data, logger)
	}
	logger.Info("groundtruth.loaded", "path", dir, "records", len(s.records), "skipped", seen-len(s.records))
	return s, nil
}

// Load picks LoadDir or LoadFile depending on what path is.
func Load(path string, logger *slog.Logger) (*MemoryStore, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat ground truth %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(path, logger)
	}
	return LoadFile(path, logger)
}

func (s *MemoryStore) add(key string, data []byte, logger *slog.Logger) {
	rec, fieldsOK, err := ParseRecord(data)
	if err != nil {
		logger.Warn("groundtruth.record.skipped", "key", key, "error", err)
		return
	}
	if !fieldsOK {
		logger.Warn("groundtruth.fields.malformed", "key", key)
	}
	s.records[ParseKey(key)] = rec
}
