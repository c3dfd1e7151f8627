package fields

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

// jobTier is one ranked strategy. It returns the raw candidates it saw and the
// winner it picked; an empty winner passes control to the next tier.
type jobTier struct {
	name string
	run  func(text string) ([]Candidate, string)
}

// JobNumberSearcher resolves the project/job number through cascading tiers.
type JobNumberSearcher struct {
	identity
	cat    *jobNumberCatalogue
	tiers  []jobTier
	tracer Tracer
}

func NewJobNumberSearcher(cat *Catalogue, tracer Tracer) *JobNumberSearcher {
	s := &JobNumberSearcher{cat: &cat.job, tracer: tracerOrNop(tracer)}
	s.tiers = []jobTier{
		{name: "dotted", run: s.dottedTier},
		{name: "long-digits", run: s.longDigitsTier},
		{name: "short-digits", run: s.shortDigitsTier},
		{name: "generic", run: s.genericTier},
		{name: "standalone-dotted", run: s.standaloneTier},
	}
	return s
}

func (s *JobNumberSearcher) Field() constants.Field { return constants.JobNumber }

func (s *JobNumberSearcher) Search(text string) Value {
	cleaned := s.normalize(text)
	for _, tier := range s.tiers {
		cands, winner := tier.run(cleaned)
		if winner == "" {
			continue
		}
		s.tracer.Trace(Event{
			Field:      constants.JobNumber,
			Tier:       tier.name,
			Candidates: candidateTexts(cands),
			Winner:     winner,
		})
		return Text(winner)
	}
	s.tracer.Trace(Event{Field: constants.JobNumber, Absent: true})
	return Absent()
}

// normalize flattens line breaks and repairs OCR damage inside dotted numbers:
// "20.00,092" becomes "20.00.092" and "22. 00 .092" becomes "22.00.092".
func (s *JobNumberSearcher) normalize(text string) string {
	out := s.cat.horizontalSpace.ReplaceAllString(text, " ")
	out = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(out)
	if r, err := s.cat.commaBetweenDigits.Replace(out, ".", -1, -1); err == nil {
		out = r
	}
	if r, err := s.cat.spacedDot.Replace(out, ".", -1, -1); err == nil {
		out = r
	}
	return out
}

func (s *JobNumberSearcher) dottedTier(text string) ([]Candidate, string) {
	cands := findAllRE2(s.cat.dotted, text, 1)
	if len(cands) == 0 {
		return nil, ""
	}
	return cands, largestNumeric(preferMultiDot(candidateTexts(cands)))
}

func (s *JobNumberSearcher) longDigitsTier(text string) ([]Candidate, string) {
	cands := findAllRE2(s.cat.longDigits, text, 1)
	if len(cands) == 0 {
		return nil, ""
	}
	return cands, largestNumeric(candidateTexts(cands))
}

func (s *JobNumberSearcher) shortDigitsTier(text string) ([]Candidate, string) {
	cands := findAllRE2(s.cat.shortDigits, text, 1)
	if len(cands) == 0 {
		return nil, ""
	}
	core, _ := s.mostFrequentCore(candidateTexts(cands))
	return cands, core
}

func (s *JobNumberSearcher) genericTier(text string) ([]Candidate, string) {
	cands := findAllRE2(s.cat.generic, text, 1)
	var kept []string
	for _, c := range cands {
		up := strings.ToUpper(strings.TrimSpace(c.Text))
		if _, stop := s.cat.stopwords[up]; stop {
			continue
		}
		if s.cat.yearDash.MatchString(up) {
			continue
		}
		if isAlpha(up) {
			continue
		}
		kept = append(kept, c.Text)
	}
	if len(kept) == 0 {
		return cands, ""
	}
	if core, ok := s.mostFrequentCore(kept); ok {
		return cands, core
	}
	return cands, largestNumeric(kept)
}

func (s *JobNumberSearcher) standaloneTier(text string) ([]Candidate, string) {
	cands := findAllRE2(s.cat.standalone, text, 1)
	if len(cands) == 0 {
		return nil, ""
	}
	return cands, largestNumeric(preferMultiDot(candidateTexts(cands)))
}

// mostFrequentCore reduces candidates to their leading 4-6 digit core and
// returns the core seen most often; equal counts go to the larger number.
func (s *JobNumberSearcher) mostFrequentCore(candidates []string) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, c := range candidates {
		m := s.cat.core.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		if counts[m[1]] == 0 {
			order = append(order, m[1])
		}
		counts[m[1]]++
	}
	if len(order) == 0 {
		return "", false
	}
	best := order[0]
	for _, core := range order[1:] {
		if counts[core] > counts[best] ||
			(counts[core] == counts[best] && compareNumeric(core, best) > 0) {
			best = core
		}
	}
	return best, true
}

// preferMultiDot keeps only candidates with two or more dots when any exist.
func preferMultiDot(candidates []string) []string {
	var dotted []string
	for _, c := range candidates {
		if strings.Count(c, ".") >= 2 {
			dotted = append(dotted, c)
		}
	}
	if len(dotted) > 0 {
		return dotted
	}
	return candidates
}

func findAllRE2(re *regexp2.Regexp, text string, group int) []Candidate {
	var out []Candidate
	m, err := re.FindStringMatch(text)
	for err == nil && m != nil {
		if g := m.GroupByNumber(group); g != nil && g.Length > 0 {
			out = append(out, Candidate{Text: g.String(), Offset: g.Index})
		}
		m, err = re.FindNextMatch(m)
	}
	return out
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}
