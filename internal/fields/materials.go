package fields

import (
	"strings"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

// MaterialsSearcher lists construction materials in order of first appearance.
type MaterialsSearcher struct {
	identity
	pattern Pattern
	tracer  Tracer
}

func NewMaterialsSearcher(cat *Catalogue, tracer Tracer) *MaterialsSearcher {
	return &MaterialsSearcher{pattern: cat.materials, tracer: tracerOrNop(tracer)}
}

func (s *MaterialsSearcher) Field() constants.Field { return constants.Materials }

func (s *MaterialsSearcher) Search(text string) Value {
	cands := s.pattern.FindAll(text)
	terms := make([]string, len(cands))
	for i, c := range cands {
		terms[i] = strings.ToUpper(collapseSpace(c.Text))
	}
	items := orderedDistinct(terms)
	s.tracer.Trace(Event{
		Field:      constants.Materials,
		Tier:       s.pattern.Name,
		Candidates: candidateTexts(cands),
		Winner:     strings.Join(items, ", "),
		Absent:     len(items) == 0,
	})
	return List(items)
}
