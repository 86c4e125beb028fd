package taxonomy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/letterscan/constants"
)

// LoadFile reads a YAML taxonomy. Sections missing from the file fall back to
// Default; a section present in the file replaces the default one entirely.
func LoadFile(path string) (Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML taxonomy bytes, merging over Default.
func Parse(data []byte) (Taxonomy, error) {
	var file Taxonomy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Taxonomy{}, fmt.Errorf("%w: decode yaml: %v", ErrInvalidTaxonomy, err)
	}

	if err := canonicalizeTypes(&file); err != nil {
		return Taxonomy{}, err
	}
	return merge(Default(), file), nil
}

// Marshal renders t as YAML.
func Marshal(t Taxonomy) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func merge(base, file Taxonomy) Taxonomy {
	out := base
	if file.Name != "" {
		out.Name = file.Name
	}
	if file.Boundary.Titles != nil {
		out.Boundary.Titles = file.Boundary.Titles
	}
	if file.Boundary.Salutations != nil {
		out.Boundary.Salutations = file.Boundary.Salutations
	}
	if file.Boundary.Regulatory != nil {
		out.Boundary.Regulatory = file.Boundary.Regulatory
	}
	if file.Letterhead.Signatures != nil {
		out.Letterhead.Signatures = file.Letterhead.Signatures
	}
	if file.Letterhead.Window > 0 {
		out.Letterhead.Window = file.Letterhead.Window
	}
	if file.Rules != nil {
		out.Rules = file.Rules
	}
	if file.Grammars != nil {
		out.Grammars = file.Grammars
	}
	if file.Default.Fields != nil {
		out.Default = file.Default
	}
	if file.MatchTimeout > 0 {
		out.MatchTimeout = file.MatchTimeout
	}
	return out
}

// canonicalizeTypes lets YAML authors write "surat tugas" or "Surat_Tugas".
func canonicalizeTypes(t *Taxonomy) error {
	for i := range t.Rules {
		dt, ok := constants.Canonicalize(string(t.Rules[i].Type))
		if !ok {
			return fmt.Errorf("%w: rules[%d]: unknown document type %q", ErrInvalidTaxonomy, i, t.Rules[i].Type)
		}
		t.Rules[i].Type = dt
	}
	for i := range t.Grammars {
		dt, ok := constants.Canonicalize(string(t.Grammars[i].Type))
		if !ok {
			return fmt.Errorf("%w: grammars[%d]: unknown document type %q", ErrInvalidTaxonomy, i, t.Grammars[i].Type)
		}
		t.Grammars[i].Type = dt
	}
	return nil
}
