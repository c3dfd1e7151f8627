package fields

import "github.com/joseph-ayodele/book-of-knowledge/constants"

// WindSpeedSearcher prefers a labeled design wind speed and falls back to the
// first bare "<n> mph" in the text.
type WindSpeedSearcher struct {
	identity
	patterns []Pattern
	tracer   Tracer
}

func NewWindSpeedSearcher(cat *Catalogue, tracer Tracer) *WindSpeedSearcher {
	return &WindSpeedSearcher{patterns: cat.windSpeed, tracer: tracerOrNop(tracer)}
}

func (s *WindSpeedSearcher) Field() constants.Field { return constants.WindSpeed }

func (s *WindSpeedSearcher) Search(text string) Value {
	for _, p := range s.patterns {
		c, ok := p.First(text)
		if !ok {
			continue
		}
		winner := c.Text + " mph"
		s.tracer.Trace(Event{
			Field:      constants.WindSpeed,
			Tier:       p.Name,
			Candidates: []string{c.Text},
			Winner:     winner,
		})
		return Text(winner)
	}
	s.tracer.Trace(Event{Field: constants.WindSpeed, Absent: true})
	return Absent()
}
