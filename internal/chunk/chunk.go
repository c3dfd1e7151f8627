// Package chunk splits page text into header-scoped, size-bounded chunks for
// downstream indexing.
package chunk

import (
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Strategies recorded on each chunk.
const (
	StrategyHeader     = "header"
	StrategyHeaderPara = "header+para"
	StrategyPara       = "para"
)

var engineeringHeaders = []string{
	`(?:STRUCTURAL\s+)?GENERAL\s+NOTES`,
	`DESIGN\s+CRITERIA`,
	`LOADS?`,
	`WIND\s+(?:CRITERIA|LOADS?)`,
	`SEISMIC\s+(?:CRITERIA|DESIGN|LOADS?)`,
	`RISK\s+CATEGORY`,
	`MATERIALS?`,
	`CONCRETE`,
	`STEEL`,
	`MASONRY`,
	`WOOD`,
	`FOUNDATIONS?`,
	`GEOTECH(?:NICAL)?`,
	`DETAILS?`,
	`SCHEDULES?`,
	`ABBREVIATIONS`,
	`(?:DRAWING|SHEET)\s+INDEX`,
	`PROJECT\s+INFORMATION`,
}

var (
	headerLine   = regexp.MustCompile(`(?im)^[ \t]*(?:` + strings.Join(engineeringHeaders, "|") + `)\b[ \t]*:?[ \t]*$`)
	paraSplit    = regexp.MustCompile(`\n\s*\n+`)
	sentenceStop = regexp.MustCompile(`[.?!]\s+`)
)

// Chunk is one bounded piece of a page.
type Chunk struct {
	Page     int    `json:"page"`
	Header   string `json:"header,omitempty"`
	Text     string `json:"text"`
	Strategy string `json:"strategy"`
}

type Options struct {
	MaxChars int // upper bound per chunk before overlap is prepended
	Overlap  int // characters of the previous chunk carried forward
}

func DefaultOptions() Options { return Options{MaxChars: 1200, Overlap: 150} }

func (o Options) normalized() Options {
	if o.MaxChars <= 0 {
		o.MaxChars = 1200
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.Overlap >= o.MaxChars {
		o.Overlap = o.MaxChars / 2
	}
	return o
}

// Pages chunks every non-blank page. Pages are numbered from 1. A page with
// recognised section headers is split at them; otherwise, and for oversized
// sections, text is packed paragraph by paragraph.
func Pages(pages []string, opts Options) []Chunk {
	opts = opts.normalized()
	var out []Chunk
	for i, raw := range pages {
		page := i + 1
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		blocks := splitByHeaders(text)
		if len(blocks) == 0 {
			for _, c := range paragraphs(text, opts) {
				out = append(out, Chunk{Page: page, Text: c, Strategy: StrategyPara})
			}
			continue
		}
		for _, b := range blocks {
			if runeLen(b.body) <= opts.MaxChars {
				out = append(out, Chunk{Page: page, Header: b.header, Text: b.body, Strategy: StrategyHeader})
				continue
			}
			for _, c := range paragraphs(b.body, opts) {
				out = append(out, Chunk{Page: page, Header: b.header, Text: c, Strategy: StrategyHeaderPara})
			}
		}
	}
	return out
}

// WriteJSONL writes one JSON object per chunk per line.
func WriteJSONL(w io.Writer, chunks []Chunk) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			return err
		}
	}
	return nil
}

type block struct {
	header string
	body   string
}

// splitByHeaders returns the non-empty bodies that follow each header line.
// Text before the first header is dropped.
func splitByHeaders(text string) []block {
	locs := headerLine.FindAllStringIndex(text, -1)
	var out []block
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])
		if body == "" {
			continue
		}
		out = append(out, block{header: strings.TrimSpace(text[loc[0]:loc[1]]), body: body})
	}
	return out
}

// paragraphs packs blank-line separated paragraphs into chunks of at most
// opts.MaxChars. Oversized paragraphs are split by sentence, and oversized
// sentences are cut into windows that overlap by opts.Overlap.
func paragraphs(text string, opts Options) []string {
	max := opts.MaxChars
	var chunks []string
	var buf string
	flush := func() {
		if s := strings.TrimSpace(buf); s != "" {
			chunks = append(chunks, s)
		}
		buf = ""
	}

	for _, para := range paraSplit.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if runeLen(para) <= max {
			if runeLen(buf)+runeLen(para)+2 <= max {
				buf = strings.TrimSpace(buf + "\n\n" + para)
			} else {
				flush()
				buf = para
			}
			continue
		}

		flush()
		var cur string
		for _, s := range sentences(para) {
			if runeLen(s) > max {
				chunks = append(chunks, windows(s, max, opts.Overlap)...)
				cur = ""
				continue
			}
			if runeLen(cur)+runeLen(s)+1 <= max {
				cur = strings.TrimSpace(cur + " " + s)
			} else {
				if cur != "" {
					chunks = append(chunks, cur)
				}
				cur = strings.TrimSpace(s)
			}
		}
		if cur != "" {
			chunks = append(chunks, cur)
		}
	}
	flush()

	if opts.Overlap == 0 || len(chunks) < 2 {
		return chunks
	}
	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		out[i] = strings.TrimSpace(tail(chunks[i-1], opts.Overlap) + " " + chunks[i])
	}
	return out
}

// sentences splits after '.', '?' or '!' followed by whitespace, keeping the
// punctuation with its sentence.
func sentences(para string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceStop.FindAllStringIndex(para, -1) {
		out = append(out, para[last:loc[0]+1])
		last = loc[1]
	}
	return append(out, para[last:])
}

func windows(s string, max, overlap int) []string {
	r := []rune(s)
	var out []string
	for start := 0; start < len(r); start += max - overlap {
		end := min(start+max, len(r))
		if w := strings.TrimSpace(string(r[start:end])); w != "" {
			out = append(out, w)
		}
		if end == len(r) {
			break
		}
	}
	return out
}

func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
