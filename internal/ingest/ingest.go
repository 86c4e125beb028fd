// Package ingest finds letter sources on disk or over HTTP and hands them to
// the OCR collaborator. Nothing here looks at page content.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/letterscan/constants"
)

// Source is one processable file.
type Source struct {
	Path    string `json:"path"`
	Ext     string `json:"ext"`
	Format  string `json:"format"`
	Size    int64  `json:"size"`
	HashHex string `json:"sha256,omitempty"`
	Err     string `json:"error,omitempty"`
}

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Describe stats and hashes path. Unsupported extensions are rejected.
func Describe(path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fmt.Errorf("abs path: %w", err)
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return Source{}, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		return Source{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Source{}, fmt.Errorf("hash: %w", err)
	}
	return Source{
		Path:    abs,
		Ext:     ext,
		Format:  constants.MapExtToFormat(ext),
		Size:    n,
		HashHex: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// Dedup remembers content hashes already handed out, so a file rewritten
// with identical bytes (or copied twice into a hot folder) runs once.
type Dedup struct {
	mu   sync.Mutex
	seen map[string]string
}

func NewDedup() *Dedup {
	return &Dedup{seen: make(map[string]string)}
}

// Claim records src and reports whether it is new. For a duplicate it also
// returns the path first seen with that content.
func (d *Dedup) Claim(src Source) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if first, ok := d.seen[src.HashHex]; ok {
		return false, first
	}
	d.seen[src.HashHex] = src.Path
	return true, ""
}
