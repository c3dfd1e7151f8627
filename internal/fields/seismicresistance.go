package fields

import (
	"strings"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

// SeismicResistanceSearcher lists the lateral force-resisting systems named in
// the text, keeping only maximal phrases.
type SeismicResistanceSearcher struct {
	identity
	patterns []Pattern
	tracer   Tracer
}

func NewSeismicResistanceSearcher(cat *Catalogue, tracer Tracer) *SeismicResistanceSearcher {
	return &SeismicResistanceSearcher{patterns: cat.seismicSystems, tracer: tracerOrNop(tracer)}
}

func (s *SeismicResistanceSearcher) Field() constants.Field {
	return constants.SeismicResistanceSystem
}

func (s *SeismicResistanceSearcher) Search(text string) Value {
	cleaned := collapseSpace(strings.ToUpper(text))
	var found []string
	for _, p := range s.patterns {
		for _, c := range p.FindAll(cleaned) {
			found = append(found, strings.TrimSpace(c.Text))
		}
	}
	found = orderedDistinct(found)
	items := suppressSubstrings(found)
	s.tracer.Trace(Event{
		Field:      constants.SeismicResistanceSystem,
		Tier:       "catalogue",
		Candidates: found,
		Winner:     strings.Join(items, ", "),
		Absent:     len(items) == 0,
	})
	return List(items)
}

// suppressSubstrings drops every phrase that is a strict substring of another
// phrase in the list. Order is preserved.
func suppressSubstrings(phrases []string) []string {
	var out []string
	for i, p := range phrases {
		contained := false
		for j, q := range phrases {
			if i != j && len(q) > len(p) && strings.Contains(q, p) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, p)
		}
	}
	return out
}
