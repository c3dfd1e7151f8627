package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
)

// Pass names recorded on results and extract jobs.
const (
	PassText     = "txt"
	PassPDFText  = "pdf-text"
	PassPDFOCR   = "pdf-ocr"
	PassImageOCR = "image-ocr"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 150
	MaxPages      int // pages read per document, default 5

	// AlwaysOCR runs the OCR pass even when the text layer produced text.
	// Drawing sets often carry title-block text only in the raster.
	AlwaysOCR bool
}

// DefaultConfig mirrors the batch defaults: 150 DPI, first five pages, OCR always on.
func DefaultConfig() Config {
	return Config{TesseractLang: "eng", DPI: 150, MaxPages: 5, AlwaysOCR: true}
}

// FromAppConfig maps the application OCR section onto an extractor config.
func FromAppConfig(c common.OCRConfig) Config {
	return Config{
		Pdftotext:     c.PdfToTextBin,
		Pdftoppm:      c.PdfToPpmBin,
		Tesseract:     c.TesseractBin,
		TesseractLang: c.TesseractLang,
		TessdataDir:   c.TessdataDir,
		DPI:           c.DPI,
		MaxPages:      c.MaxPages,
		AlwaysOCR:     c.AlwaysOCR,
	}
}

type ExtractionResult struct {
	// Text is every successful pass joined with "\n"; the engine expects the
	// duplication.
	Text       string
	Pages      []string // per-page text of the first pass that had page breaks
	SourceType string   // constants.PDF | constants.IMAGE | constants.TXT
	Passes     []string // passes that produced text, in run order
	Language   string
	Duration   time.Duration
	Warnings   []string
	Signal     float32 // 0..1, how much drawing vocabulary the text carries
}

// Method joins the pass names, e.g. "pdf-text+pdf-ocr".
func (r ExtractionResult) Method() string { return strings.Join(r.Passes, "+") }

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the exec runner, mainly for tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// passResult is the output of one extraction pass.
type passResult struct {
	name  string
	text  string
	pages []string
	warns []string
	err   error
}

// Extract picks passes based on file extension and concatenates their text.
// A failed pass only adds a warning; Extract fails when no pass produced text
// and at least one of them errored.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext, "format", format)

	var passes []passResult
	switch format {
	case constants.TXT:
		passes = append(passes, e.readText(path))
	case constants.PDF:
		text := e.pdfToText(ctx, path)
		passes = append(passes, text)
		if e.cfg.AlwaysOCR || strings.TrimSpace(text.text) == "" {
			passes = append(passes, e.pdfToOCR(ctx, path))
		}
	case constants.IMAGE:
		passes = append(passes, e.imageOCR(ctx, path))
	default:
		e.logger.Error("ocr.extract.unsupported", "path", path, "ext", ext)
		return ExtractionResult{}, common.NewAppError("UNSUPPORTED_FILE",
			fmt.Sprintf("unsupported extension %q", ext), common.ErrUnsupportedFile)
	}

	res := ExtractionResult{SourceType: format, Language: e.cfg.TesseractLang}
	var parts []string
	var errs []error
	for _, p := range passes {
		res.Warnings = append(res.Warnings, p.warns...)
		if p.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.name, p.err))
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s failed: %v", p.name, p.err))
			continue
		}
		text := Normalize(p.text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		res.Passes = append(res.Passes, p.name)
		if res.Pages == nil && len(p.pages) > 0 {
			res.Pages = normalizePages(p.pages)
		}
	}
	res.Text = strings.Join(parts, "\n")
	res.Duration = time.Since(start)

	if res.Text == "" && len(errs) > 0 {
		e.logger.Error("ocr.extract.failed", "path", path, "errors", len(errs))
		return res, fmt.Errorf("%w: %w", common.ErrNoText, errors.Join(errs...))
	}
	if res.Pages == nil && res.Text != "" {
		res.Pages = []string{res.Text}
	}
	res.Signal = signalScore(res.Text)

	e.logger.Info("ocr.extract.ok",
		"path", path,
		"method", res.Method(),
		"chars", len(res.Text),
		"pages", len(res.Pages),
		"signal", res.Signal,
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) readText(path string) passResult {
	b, err := os.ReadFile(path)
	if err != nil {
		return passResult{name: PassText, err: err}
	}
	text := string(b)
	return passResult{name: PassText, text: text, pages: splitPages(text)}
}

// splitPages splits on form feeds, the page separator pdftotext emits.
func splitPages(text string) []string {
	if !strings.Contains(text, "\f") {
		return nil
	}
	pages := strings.Split(text, "\f")
	// pdftotext terminates the last page with a form feed too
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

func normalizePages(pages []string) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = Normalize(p)
	}
	return out
}
