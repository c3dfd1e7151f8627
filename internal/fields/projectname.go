package fields

import (
	"strings"
	"unicode"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

const (
	minProjectName = 5
	maxProjectName = 100
)

// ProjectNameSearcher is a best-effort title-block heuristic. It reports
// constants.UnknownValue rather than an absent value.
type ProjectNameSearcher struct {
	identity
	patterns []Pattern
	deny     []string
	tracer   Tracer
}

func NewProjectNameSearcher(cat *Catalogue, tracer Tracer) *ProjectNameSearcher {
	return &ProjectNameSearcher{
		patterns: cat.projectNameLines,
		deny:     cat.projectNameDeny,
		tracer:   tracerOrNop(tracer),
	}
}

func (s *ProjectNameSearcher) Field() constants.Field { return constants.ProjectName }

func (s *ProjectNameSearcher) Search(text string) Value {
	lines := nonEmptyLines(text)
	for _, line := range lines {
		for _, p := range s.patterns {
			c, ok := p.First(line)
			if !ok {
				continue
			}
			name := strings.TrimSpace(c.Text)
			if s.valid(name) {
				return s.found(p.Name, name)
			}
		}
	}
	for _, line := range lines {
		if isUpperLine(line) && len(strings.Fields(line)) >= 3 && s.valid(line) {
			return s.found("upper-case-line", line)
		}
	}
	s.tracer.Trace(Event{Field: constants.ProjectName, Absent: true})
	return Text(constants.UnknownValue)
}

func (s *ProjectNameSearcher) found(tier, name string) Value {
	s.tracer.Trace(Event{
		Field:      constants.ProjectName,
		Tier:       tier,
		Candidates: []string{name},
		Winner:     name,
	})
	return Text(name)
}

func (s *ProjectNameSearcher) valid(name string) bool {
	if name == "" {
		return false
	}
	upper := strings.ToUpper(name)
	for _, phrase := range s.deny {
		if strings.Contains(upper, phrase) {
			return false
		}
	}
	n := len([]rune(name))
	return n >= minProjectName && n <= maxProjectName
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// isUpperLine reports whether s has at least one letter and no lower-case ones.
func isUpperLine(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
