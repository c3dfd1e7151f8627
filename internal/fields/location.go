package fields

import (
	"strings"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

const (
	minLocation = 10
	maxLocation = 150
)

// LocationSearcher returns the first address-like line together with one line
// of context on each side.
type LocationSearcher struct {
	identity
	keywords []Pattern
	tracer   Tracer
}

func NewLocationSearcher(cat *Catalogue, tracer Tracer) *LocationSearcher {
	return &LocationSearcher{keywords: cat.locationKeywords, tracer: tracerOrNop(tracer)}
}

func (s *LocationSearcher) Field() constants.Field { return constants.Location }

func (s *LocationSearcher) Search(text string) Value {
	lines := strings.Split(text, "\n")
	var cands []string
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tier, ok := s.matchKeyword(line)
		if !ok {
			continue
		}
		lo, hi := max(0, i-1), min(len(lines), i+2)
		cand := strings.TrimSpace(strings.Join(lines[lo:hi], "\n"))
		cands = append(cands, cand)
		if n := len([]rune(cand)); n >= minLocation && n <= maxLocation {
			s.tracer.Trace(Event{
				Field:      constants.Location,
				Tier:       tier,
				Candidates: cands,
				Winner:     cand,
			})
			return Text(cand)
		}
	}
	s.tracer.Trace(Event{Field: constants.Location, Candidates: cands, Absent: true})
	return Text(constants.UnknownValue)
}

func (s *LocationSearcher) matchKeyword(line string) (string, bool) {
	for _, p := range s.keywords {
		if p.Expr.MatchString(line) {
			return p.Name, true
		}
	}
	return "", false
}
