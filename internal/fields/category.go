package fields

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

var romanRisk = map[string]string{"1": "I", "2": "II", "3": "III", "4": "IV"}

// CategorySearcher finds single-token category codes behind a label and keeps
// only whitelisted values. Risk category, site class and seismic design
// category share it.
type CategorySearcher struct {
	field     constants.Field
	patterns  []Pattern
	allowed   map[string]struct{}
	canonical map[string]string
	tracer    Tracer
}

func NewRiskCategorySearcher(cat *Catalogue, tracer Tracer) *CategorySearcher {
	return &CategorySearcher{
		field:     constants.RiskCategory,
		patterns:  cat.riskCategory,
		allowed:   setOf("I", "II", "III", "IV", "1", "2", "3", "4"),
		canonical: romanRisk,
		tracer:    tracerOrNop(tracer),
	}
}

func NewSiteClassSearcher(cat *Catalogue, tracer Tracer) *CategorySearcher {
	return &CategorySearcher{
		field:    constants.SiteClass,
		patterns: cat.siteClass,
		allowed:  setOf("A", "B", "C", "D", "E", "F"),
		tracer:   tracerOrNop(tracer),
	}
}

func NewSeismicDesignCategorySearcher(cat *Catalogue, tracer Tracer) *CategorySearcher {
	return &CategorySearcher{
		field:    constants.SeismicDesignCategory,
		patterns: cat.seismicDesign,
		allowed:  setOf("A", "B", "C", "D", "E"),
		tracer:   tracerOrNop(tracer),
	}
}

func (s *CategorySearcher) Field() constants.Field { return s.field }

func (s *CategorySearcher) Search(text string) Value {
	var (
		cands []Candidate
		valid []Candidate
		tier  string
	)
	for _, p := range s.patterns {
		found := p.FindAll(text)
		cands = append(cands, found...)
		for _, c := range found {
			if _, ok := s.allowed[c.Text]; ok {
				valid = append(valid, c)
				tier = p.Name
			}
		}
	}
	items := sortedDistinct(valid, strings.TrimSpace)
	s.tracer.Trace(Event{
		Field:      s.field,
		Tier:       tier,
		Candidates: candidateTexts(cands),
		Winner:     strings.Join(items, ", "),
		Absent:     len(items) == 0,
	})
	return Joined(items)
}

// Standardize maps numeric risk categories onto roman numerals, then
// deduplicates and sorts. Site class and SDC are already canonical.
func (s *CategorySearcher) Standardize(v Value) Value {
	if v.IsAbsent() {
		return v
	}
	parts := v.parts()
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if c, ok := s.canonical[p]; ok {
			p = c
		}
		out = append(out, p)
	}
	out = orderedDistinct(out)
	sort.Strings(out)
	return Joined(out)
}

func setOf(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}
