package fields

import (
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// collapseSpace joins OCR line breaks and repeated blanks into single spaces.
func collapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// DesignCodeSearcher collects every governing building code and standard named
// in the text.
type DesignCodeSearcher struct {
	cat    *Catalogue
	tracer Tracer
}

func NewDesignCodeSearcher(cat *Catalogue, tracer Tracer) *DesignCodeSearcher {
	return &DesignCodeSearcher{cat: cat, tracer: tracerOrNop(tracer)}
}

func (s *DesignCodeSearcher) Field() constants.Field { return constants.DesignCode }

// Search returns the distinct matched spans, sorted so that the joined form
// does not depend on discovery order.
func (s *DesignCodeSearcher) Search(text string) Value {
	cands := s.cat.designCodes.FindAll(text)
	items := sortedDistinct(cands, collapseSpace)
	s.tracer.Trace(Event{
		Field:      constants.DesignCode,
		Tier:       s.cat.designCodes.Name,
		Candidates: candidateTexts(cands),
		Winner:     strings.Join(items, ", "),
		Absent:     len(items) == 0,
	})
	return Joined(items)
}

// Standardize rewrites each code to "<year> <ABBR>" or a compact designator
// ("ASCE7-16"), then upper-cases, deduplicates and sorts the parts.
func (s *DesignCodeSearcher) Standardize(v Value) Value {
	if v.IsAbsent() {
		return v
	}
	seen := make(map[string]struct{})
	var out []string
	for _, item := range v.parts() {
		rewritten := s.rewrite(item)
		for _, part := range strings.Split(rewritten, ",") {
			part = strings.ToUpper(collapseSpace(part))
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	sort.Strings(out)
	return Joined(out)
}

func (s *DesignCodeSearcher) rewrite(item string) string {
	out := collapseSpace(item)
	for _, rw := range s.cat.codeRewrites {
		out = rw.Apply(out)
	}
	return s.cat.codeFamilies.ReplaceAllStringFunc(out, compactDesignator)
}

// compactDesignator turns "aci 318 - 19" into "ACI318-19".
func compactDesignator(s string) string {
	s = strings.ReplaceAll(s, "–", "-")
	s = whitespaceRun.ReplaceAllString(s, "")
	return strings.ToUpper(s)
}

// sortedDistinct normalizes candidate texts with norm and returns the distinct
// non-empty results in lexical order.
func sortedDistinct(cands []Candidate, norm func(string) string) []string {
	seen := make(map[string]struct{}, len(cands))
	var out []string
	for _, c := range cands {
		t := norm(c.Text)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// orderedDistinct keeps the first occurrence of each non-empty text.
func orderedDistinct(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	var out []string
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
