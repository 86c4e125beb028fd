// Package pipeline runs the letter core over one source: group pages into
// logical documents, check the letterhead, classify, extract fields and,
// when ground truth is known, score the result.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/letterscan/constants"
	"github.com/joseph-ayodele/letterscan/internal/classify"
	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/extract"
	"github.com/joseph-ayodele/letterscan/internal/gate"
	"github.com/joseph-ayodele/letterscan/internal/groundtruth"
	"github.com/joseph-ayodele/letterscan/internal/lexicon"
	"github.com/joseph-ayodele/letterscan/internal/score"
	"github.com/joseph-ayodele/letterscan/internal/segment"
	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

// Config holds behavior flags for the processor.
type Config struct {
	// RequireFormat reports documents without the institution letterhead
	// as Unknown with no fields instead of classifying them.
	RequireFormat bool
}

// Input is one source: its name (used for ground-truth lookup) and its
// pages in reading order.
type Input struct {
	Source string         `json:"source"`
	Pages  []segment.Page `json:"pages"`
}

// Result is the outcome for one logical document.
type Result struct {
	Index         int                    `json:"index"`
	Source        string                 `json:"source,omitempty"`
	Pages         []int                  `json:"pages"`
	Boundary      string                 `json:"boundary_keyword,omitempty"`
	MatchesFormat bool                   `json:"is_institution_format"`
	Type          constants.DocumentType `json:"letter_type"`
	Label         string                 `json:"letter_label"`
	Text          string                 `json:"ocr_text"`
	Fields        extract.Fields         `json:"extracted_fields"`
	Accuracy      *score.Report          `json:"accuracy,omitempty"`
}

type Processor struct {
	cfg        Config
	detector   *segment.BoundaryDetector
	gate       *gate.Gate
	classifier *classify.Classifier
	extractor  *extract.Extractor
	truth      groundtruth.Store
	logger     *slog.Logger
}

type options struct {
	cfg     Config
	logger  *slog.Logger
	lexicon lexicon.Lookup
	truth   groundtruth.Store
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLexicon enables the classifier's canonicalized second pass.
func WithLexicon(l lexicon.Lookup) Option {
	return func(o *options) { o.lexicon = l }
}

// WithGroundTruth enables scoring for documents that have a record.
func WithGroundTruth(s groundtruth.Store) Option {
	return func(o *options) { o.truth = s }
}

func WithRequireFormat(v bool) Option {
	return func(o *options) { o.cfg.RequireFormat = v }
}

// New wires every stage from one compiled taxonomy.
func New(tax *taxonomy.Compiled, opts ...Option) *Processor {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.truth == nil {
		o.truth = groundtruth.Nop{}
	}

	copts := []classify.Option{classify.WithLogger(o.logger)}
	if o.lexicon != nil {
		copts = append(copts, classify.WithLexicon(o.lexicon))
	}
	return &Processor{
		cfg:        o.cfg,
		detector:   segment.NewBoundaryDetector(tax, o.logger),
		gate:       gate.New(tax),
		classifier: classify.New(tax, copts...),
		extractor:  extract.New(tax, o.logger),
		truth:      o.truth,
		logger:     o.logger,
	}
}

// Process groups in.Pages and runs every document through the core. The
// core itself never fails; the only errors are ground-truth store failures
// and context cancellation.
func (p *Processor) Process(ctx context.Context, in Input) ([]Result, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, p.logger)

	docs := segment.GroupPages(in.Pages, p.detector)
	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := p.processDocument(ctx, in.Source, doc)

		rec, ok, err := p.truth.Lookup(ctx, in.Source, doc.Index, len(docs))
		if err != nil {
			logger.Error("pipeline.truth.lookup_failed", "source", in.Source, "index", doc.Index, "error", err)
			return nil, common.WrapError(err, "ground truth lookup")
		}
		if ok {
			rep := score.Score(res.Text, res.Fields, rec)
			res.Accuracy = &rep
		}

		logger.Debug("pipeline.document.ok",
			"source", in.Source,
			"index", res.Index,
			"pages", res.Pages,
			"type", res.Type,
			"fields", len(res.Fields),
			"scored", res.Accuracy != nil,
		)
		results = append(results, res)
	}

	logger.Info("pipeline.ok",
		"source", in.Source,
		"pages", len(in.Pages),
		"documents", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func (p *Processor) processDocument(ctx context.Context, source string, doc segment.Document) Result {
	res := Result{
		Index:         doc.Index,
		Source:        source,
		Pages:         doc.PageNumbers(),
		MatchesFormat: p.gate.MatchesInstitutionalFormat(doc.Text),
		Type:          constants.Unknown,
		Text:          doc.Text,
		Fields:        extract.Fields{},
	}
	if len(doc.Pages) > 0 {
		res.Boundary, _ = p.detector.MatchedKeyword(doc.Pages[0].Text)
	}

	if !p.cfg.RequireFormat || res.MatchesFormat {
		res.Type = p.classifier.ClassifyContext(ctx, doc.Text)
		if f := p.extractor.ExtractFields(doc.Text, res.Type); f != nil {
			res.Fields = f
		}
	}
	res.Label = res.Type.Label()
	return res
}
