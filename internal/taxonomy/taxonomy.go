// Package taxonomy holds the static, per-institution configuration of the
// letter pipeline: boundary keywords, the letterhead signature, the ordered
// classifier rules and the extraction grammars.
//
// A Taxonomy is plain data (YAML-friendly). Compile validates it and returns
// a *Compiled value that is immutable and safe to share between goroutines;
// every pipeline component takes a *Compiled in its constructor.
package taxonomy

import (
	"time"

	"github.com/joseph-ayodele/letterscan/constants"
)

// DefaultMatchTimeout bounds a single regex evaluation.
const DefaultMatchTimeout = 250 * time.Millisecond

// DefaultLetterheadWindow is the number of leading code points searched for
// the letterhead signature.
const DefaultLetterheadWindow = 300

type Taxonomy struct {
	Name         string           `yaml:"name"`
	Boundary     BoundaryKeywords `yaml:"boundary"`
	Letterhead   Letterhead       `yaml:"letterhead"`
	Rules        []ClassRule      `yaml:"rules"`
	Grammars     []Grammar        `yaml:"grammars"`
	Default      Grammar          `yaml:"default_grammar"`
	MatchTimeout time.Duration    `yaml:"match_timeout"`
}

// BoundaryKeywords are the phrases whose presence on a page opens a new letter.
type BoundaryKeywords struct {
	Titles      []string `yaml:"titles"`
	Salutations []string `yaml:"salutations"`
	Regulatory  []string `yaml:"regulatory"`
}

// All returns titles, salutations and regulatory markers in that order.
func (b BoundaryKeywords) All() []string {
	out := make([]string, 0, len(b.Titles)+len(b.Salutations)+len(b.Regulatory))
	out = append(out, b.Titles...)
	out = append(out, b.Salutations...)
	out = append(out, b.Regulatory...)
	return out
}

type Letterhead struct {
	Signatures []string `yaml:"signatures"`
	Window     int      `yaml:"window"`
}

// ClassRule pairs a document type with the pattern that selects it.
type ClassRule struct {
	Type    constants.DocumentType `yaml:"type"`
	Pattern string                 `yaml:"pattern"`
}

// Grammar is the ordered list of field rules for one document type.
type Grammar struct {
	Type   constants.DocumentType `yaml:"type,omitempty"`
	Fields []FieldRule            `yaml:"fields"`
}

// FieldNames lists the declared field names in evaluation order.
func (g Grammar) FieldNames() []string {
	names := make([]string, len(g.Fields))
	for i, f := range g.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldRule extracts one named field. Alternatives are tried in order and the
// first one producing a non-empty capture wins.
type FieldRule struct {
	Name         string    `yaml:"name"`
	Alternatives []Pattern `yaml:"patterns"`
}

// Pattern is a regular expression plus its capture-group selection policy.
// Groups defaults to [1]. When several groups are selected their trimmed,
// non-empty captures are joined with Join (default " ").
type Pattern struct {
	Expr   string `yaml:"expr"`
	Groups []int  `yaml:"groups,omitempty"`
	Join   string `yaml:"join,omitempty"`
}
