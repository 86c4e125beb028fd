package taxonomy

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/joseph-ayodele/letterscan/constants"
)

// ErrInvalidTaxonomy is returned when a taxonomy fails validation or a
// pattern fails to compile.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// patternOptions apply to rules and grammars: case-insensitive, ^/$ per line,
// and '.' spanning newlines so multi-line captures work.
const patternOptions = regexp2.IgnoreCase | regexp2.Multiline | regexp2.Singleline

const wordClass = `[\p{L}\p{N}_]`

// Compiled is the validated, ready-to-run form of a Taxonomy.
type Compiled struct {
	Name         string
	Boundary     []Keyword
	Letterhead   Letterhead
	Rules        []CompiledRule
	Grammars     []CompiledGrammar
	Default      CompiledGrammar
	MatchTimeout time.Duration

	source Taxonomy
}

// Keyword is a boundary keyword and its word-anchored matcher.
type Keyword struct {
	Text string
	Re   *regexp2.Regexp
}

type CompiledRule struct {
	Type constants.DocumentType
	Re   *regexp2.Regexp
}

type CompiledGrammar struct {
	Type   constants.DocumentType
	Fields []CompiledField
}

type CompiledField struct {
	Name         string
	Alternatives []CompiledPattern
}

type CompiledPattern struct {
	Re     *regexp2.Regexp
	Groups []int
	Join   string
}

// Source returns a copy of the taxonomy this value was compiled from.
func (c *Compiled) Source() Taxonomy {
	return c.source
}

// GrammarFor returns the first grammar declared for t, or the default grammar.
func (c *Compiled) GrammarFor(t constants.DocumentType) CompiledGrammar {
	for _, g := range c.Grammars {
		if g.Type == t {
			return g
		}
	}
	return c.Default
}

// MustCompileDefault compiles Default and panics on error. Only for tests and
// wiring where the built-in taxonomy is known to be valid.
func MustCompileDefault() *Compiled {
	c, err := Compile(Default())
	if err != nil {
		panic(err)
	}
	return c
}

// Compile validates t and compiles every pattern in it.
func Compile(t Taxonomy) (*Compiled, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	timeout := t.MatchTimeout
	if timeout <= 0 {
		timeout = DefaultMatchTimeout
	}
	window := t.Letterhead.Window
	if window <= 0 {
		window = DefaultLetterheadWindow
	}

	c := &Compiled{
		Name:         t.Name,
		Letterhead:   Letterhead{Signatures: append([]string(nil), t.Letterhead.Signatures...), Window: window},
		MatchTimeout: timeout,
		source:       t,
	}

	for _, kw := range t.Boundary.All() {
		expr := KeywordPattern(kw)
		if expr == "" {
			continue
		}
		re, err := compileExpr(expr, regexp2.IgnoreCase, timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: boundary keyword %q: %v", ErrInvalidTaxonomy, kw, err)
		}
		c.Boundary = append(c.Boundary, Keyword{Text: kw, Re: re})
	}

	for i, r := range t.Rules {
		re, err := compileExpr(r.Pattern, patternOptions, timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d (%s): %v", ErrInvalidTaxonomy, i, r.Type, err)
		}
		c.Rules = append(c.Rules, CompiledRule{Type: r.Type, Re: re})
	}

	for _, g := range t.Grammars {
		cg, err := compileGrammar(g, timeout)
		if err != nil {
			return nil, err
		}
		c.Grammars = append(c.Grammars, cg)
	}

	def, err := compileGrammar(t.Default, timeout)
	if err != nil {
		return nil, err
	}
	c.Default = def

	return c, nil
}

func compileGrammar(g Grammar, timeout time.Duration) (CompiledGrammar, error) {
	label := string(g.Type)
	if label == "" {
		label = "default"
	}
	cg := CompiledGrammar{Type: g.Type}
	for _, f := range g.Fields {
		cf := CompiledField{Name: f.Name}
		for j, p := range f.Alternatives {
			re, err := compileExpr(p.Expr, patternOptions, timeout)
			if err != nil {
				return CompiledGrammar{}, fmt.Errorf("%w: grammar %s field %s pattern %d: %v", ErrInvalidTaxonomy, label, f.Name, j, err)
			}
			groups := p.Groups
			if len(groups) == 0 {
				groups = []int{1}
			}
			join := p.Join
			if join == "" {
				join = " "
			}
			cf.Alternatives = append(cf.Alternatives, CompiledPattern{Re: re, Groups: append([]int(nil), groups...), Join: join})
		}
		cg.Fields = append(cg.Fields, cf)
	}
	return cg, nil
}

func compileExpr(expr string, opts regexp2.RegexOptions, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = timeout
	return re, nil
}

// KeywordPattern turns a literal keyword into a regex. Internal whitespace
// matches any whitespace run, and each edge that is a word character must not
// touch another word character, so "No." never matches inside "Nomor" while
// "Kepada" still matches "Kepada:".
func KeywordPattern(kw string) string {
	parts := strings.Fields(kw)
	if len(parts) == 0 {
		return ""
	}
	for i, p := range parts {
		parts[i] = regexp2.Escape(p)
	}
	body := strings.Join(parts, `\s+`)

	runes := []rune(strings.Join(strings.Fields(kw), " "))
	var b strings.Builder
	if isWordRune(runes[0]) {
		b.WriteString(`(?<!` + wordClass + `)`)
	}
	b.WriteString(body)
	if isWordRune(runes[len(runes)-1]) {
		b.WriteString(`(?!` + wordClass + `)`)
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Validate reports structural problems without compiling patterns.
func (t Taxonomy) Validate() error {
	var problems []string
	if len(t.Letterhead.Signatures) == 0 {
		problems = append(problems, "letterhead.signatures is empty")
	}
	for i, r := range t.Rules {
		if !isDocumentType(r.Type) || r.Type == constants.Unknown {
			problems = append(problems, fmt.Sprintf("rules[%d]: unknown document type %q", i, r.Type))
		}
		if strings.TrimSpace(r.Pattern) == "" {
			problems = append(problems, fmt.Sprintf("rules[%d]: empty pattern", i))
		}
	}
	for i, g := range t.Grammars {
		if !isDocumentType(g.Type) {
			problems = append(problems, fmt.Sprintf("grammars[%d]: unknown document type %q", i, g.Type))
		}
		problems = append(problems, validateFields(fmt.Sprintf("grammars[%d]", i), g.Fields)...)
	}
	problems = append(problems, validateFields("default_grammar", t.Default.Fields)...)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTaxonomy, strings.Join(problems, "; "))
	}
	return nil
}

func validateFields(prefix string, fields []FieldRule) []string {
	var problems []string
	seen := make(map[string]struct{}, len(fields))
	for j, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			problems = append(problems, fmt.Sprintf("%s.fields[%d]: empty name", prefix, j))
		}
		if _, dup := seen[f.Name]; dup {
			problems = append(problems, fmt.Sprintf("%s.fields[%d]: duplicate field %q", prefix, j, f.Name))
		}
		seen[f.Name] = struct{}{}
		if len(f.Alternatives) == 0 {
			problems = append(problems, fmt.Sprintf("%s.fields[%d]: no patterns", prefix, j))
		}
		for k, p := range f.Alternatives {
			for _, g := range p.Groups {
				if g < 0 {
					problems = append(problems, fmt.Sprintf("%s.fields[%d].patterns[%d]: negative group %d", prefix, j, k, g))
				}
			}
		}
	}
	return problems
}

func isDocumentType(t constants.DocumentType) bool {
	for _, known := range constants.AllDocumentTypes() {
		if known == t {
			return true
		}
	}
	return false
}
