// Package classify assigns a document type to a letter by ordered rule
// matching.
package classify

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/lexicon"
	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

// Classifier evaluates the taxonomy rules top to bottom and returns the type
// of the first rule that matches anywhere in the text. Rule order is part of
// the contract: several rules may match the same letter (a permohonan that
// mentions "surat tugas"), and adding or reordering rules changes outcomes.
type Classifier struct {
	rules   []taxonomy.CompiledRule
	lexicon lexicon.Lookup
	logger  *slog.Logger
}

type Option func(*Classifier)

// WithLexicon enables a second pass over lexicon-canonicalized text when the
// raw text matches no rule.
func WithLexicon(l lexicon.Lookup) Option {
	return func(c *Classifier) { c.lexicon = l }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(tax *taxonomy.Compiled, opts ...Option) *Classifier {
	c := &Classifier{rules: tax.Rules, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the first matching type, or constants.Unknown.
func (c *Classifier) Classify(text string) constants.DocumentType {
	return c.ClassifyContext(context.Background(), text)
}

// ClassifyContext is Classify with a context for the optional lexicon lookup.
func (c *Classifier) ClassifyContext(ctx context.Context, text string) constants.DocumentType {
	if t, ok := c.firstMatch(text); ok {
		return t
	}
	if c.lexicon == nil {
		return constants.Unknown
	}
	canon := lexicon.Canonicalize(ctx, c.lexicon, text)
	if canon == text {
		return constants.Unknown
	}
	if t, ok := c.firstMatch(canon); ok {
		c.logger.Debug("classify.lexicon.matched", "type", t)
		return t
	}
	return constants.Unknown
}

func (c *Classifier) firstMatch(text string) (constants.DocumentType, bool) {
	for _, r := range c.rules {
		ok, err := r.Re.MatchString(text)
		if err != nil {
			c.logger.Warn("classify.rule.match_failed", "type", r.Type, "error", err)
			continue
		}
		if ok {
			return r.Type, true
		}
	}
	return constants.Unknown, false
}
