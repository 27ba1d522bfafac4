// Package pipeline provides the high-level orchestration from requirement text to ranked stories.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/storyweaver/internal/extraction"
	"github.com/jonathan/storyweaver/internal/ingestion"
	"github.com/jonathan/storyweaver/internal/lexicon"
	"github.com/jonathan/storyweaver/internal/optimize"
	"github.com/jonathan/storyweaver/internal/ranking"
	"github.com/jonathan/storyweaver/internal/schemas"
	"github.com/jonathan/storyweaver/internal/sections"
	"github.com/jonathan/storyweaver/internal/types"
	"github.com/jonathan/storyweaver/internal/usage"
)

// Step names reported in progress events
const (
	StepIngest   = "ingest"
	StepSections = "split_sections"
	StepExtract  = "extract_stories"
	StepOptimize = "optimize_stories"
	StepRank     = "rank_stories"
	StepDocument = "assemble_document"
)

// Step categories
const (
	CategoryIngestion    = "ingestion"
	CategoryExtraction   = "extraction"
	CategoryOptimization = "optimization"
	CategoryOutput       = "output"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step       string `json:"step"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	DocumentID string `json:"document_id,omitempty"`
	Content    any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	// Path is read from disk when set; otherwise Text is used as is.
	Path     string
	Text     string
	FileName string
	MimeType string

	Lexicon *lexicon.Lexicon // nil uses lexicon.Default()

	// Optimizer is nil when optimization is disabled or no credential is configured.
	Optimizer   optimize.Optimizer
	Ledger      *usage.Ledger
	Concurrency int

	Logger     *zap.Logger
	OnProgress ProgressCallback

	// ValidateOutput checks the finished document against the embedded JSON Schema.
	ValidateOutput bool
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, docID, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:       step,
			Category:   category,
			Message:    message,
			DocumentID: docID,
			Content:    content,
		})
	}
}

// Run turns one document into a ParsedDocument: ingest, split, extract,
// optionally optimize, then deduplicate and rank. Optimization failures never
// fail the run.
func Run(ctx context.Context, opts RunOptions) (*types.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lex := opts.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}

	src, err := load(opts)
	if err != nil {
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}
	docID := uuid.NewString()
	logger = logger.With(zap.String("document_id", docID))
	emitProgress(&opts, docID, StepIngest, CategoryIngestion,
		fmt.Sprintf("Ingested %s (%d chars)", src.Metadata.FileName, src.Metadata.CharCount), src.Metadata)

	secs := sections.NewClassifier(lex).Split(docID, src.Text)
	logger.Debug("document split", zap.Int("sections", len(secs)))
	emitProgress(&opts, docID, StepSections, CategoryExtraction,
		fmt.Sprintf("Split into %d sections", len(secs)), secs)

	drafts := extractDrafts(extraction.New(lex), secs)
	logger.Debug("stories extracted", zap.Int("drafts", len(drafts)))
	emitProgress(&opts, docID, StepExtract, CategoryExtraction,
		fmt.Sprintf("Extracted %d draft stories", len(drafts)), nil)

	runner := optimize.NewRunner(opts.Optimizer,
		optimize.WithLedger(opts.Ledger),
		optimize.WithLogger(logger),
		optimize.WithConcurrency(opts.Concurrency),
		optimize.WithGoals(lex.OptimizationGoals),
	)
	result := runner.Run(ctx, drafts)
	if runner.Enabled() {
		logger.Info("optimization finished",
			zap.Int("attempted", result.Attempted),
			zap.Int("optimized", result.Optimized),
			zap.Int("failed", result.Failed),
		)
		emitProgress(&opts, docID, StepOptimize, CategoryOptimization,
			fmt.Sprintf("Optimized %d of %d stories (%d failed)", result.Optimized, result.Attempted, result.Failed), nil)
	}

	stories := make([]types.Story, 0, len(result.Stories))
	for _, s := range result.Stories {
		stories = append(stories, *s)
	}
	final := ranking.DeduplicateAndRank(stories)
	for i := range final {
		final[i].DocumentID = docID
	}
	summary := ranking.Summarize(final)
	emitProgress(&opts, docID, StepRank, CategoryExtraction, summary.Notes(), nil)

	doc := &types.ParsedDocument{
		ID:                   docID,
		FileName:             src.Metadata.FileName,
		FileType:             string(src.Metadata.FileType),
		MimeType:             src.Metadata.MimeType,
		Status:               types.DocumentCompleted,
		TotalChars:           src.Metadata.CharCount,
		Sections:             secs,
		Stories:              final,
		StoryCount:           len(final),
		AverageConfidence:    summary.AverageConfidence,
		OptimizedCount:       result.Optimized,
		OptimizationFailures: result.Failed,
		CreatedAt:            time.Now(),
	}

	if opts.ValidateOutput {
		if err := ValidateDocument(doc); err != nil {
			return nil, err
		}
	}

	logger.Info("document parsed",
		zap.Int("sections", len(secs)),
		zap.Int("stories", doc.StoryCount),
	)
	emitProgress(&opts, docID, StepDocument, CategoryOutput, "Document parsed", doc)
	return doc, nil
}

// load reads the input file, or wraps in-memory text. File name and MIME
// type are diagnostic for in-memory text, so an unrecognized type is read as
// plain text.
func load(opts RunOptions) (*ingestion.Source, error) {
	if opts.Path != "" {
		return ingestion.ReadFile(opts.Path)
	}

	fileType := ingestion.DetectFileType(opts.FileName, opts.MimeType)
	if fileType == ingestion.FileTypeUnknown {
		fileType = ingestion.FileTypeText
	}
	if fileType == ingestion.FileTypePDF || fileType == ingestion.FileTypeDOCX {
		return nil, &ingestion.UnsupportedTypeError{FileName: opts.FileName, FileType: fileType, Reason: "binary format needs an external converter"}
	}
	mimeType := opts.MimeType
	if mimeType == "" {
		mimeType = fileType.MimeType()
	}
	text := ingestion.CleanText(opts.Text)
	return &ingestion.Source{
		Text:     text,
		Metadata: ingestion.NewMetadata(text, opts.FileName, fileType, mimeType),
	}, nil
}

// extractDrafts runs the extractor over the extractable sections in document order
func extractDrafts(e *extraction.Extractor, secs []types.DocumentSection) []*types.Story {
	var drafts []*types.Story
	for _, sec := range secs {
		if !sections.Extractable(sec) {
			continue
		}
		drafts = append(drafts, e.FromSection(sec)...)
	}
	return drafts
}

// ValidateDocument checks a document against the parsed_document schema
func ValidateDocument(doc *types.ParsedDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := schemas.Validate(schemas.ParsedDocument, data); err != nil {
		return fmt.Errorf("document failed schema validation: %w", err)
	}
	return nil
}
