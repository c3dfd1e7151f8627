package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTracer struct {
	events []Event
}

func (r *recordingTracer) Trace(e Event) { r.events = append(r.events, e) }

func TestJobNumberSearch(t *testing.T) {
	s := NewJobNumberSearcher(DefaultCatalogue(), nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"sub-numbered variants resolve to core", "Project No: 19145.1 ... 19145.2 ... 19145.1", "19145"},
		{"dotted tier wins outright", "Project Number 22.00.092.02", "22.00.092.02"},
		{"prefers two or more dots", "Project No. 12.34 and Project No: 22.00.092", "22.00.092"},
		{"comma between digits", "B&P Job Number: 20.00,092", "20.00.092"},
		{"spaces around dots", "Project Number 22. 00 .092", "22.00.092"},
		{"label broken across lines", "Project\nNumber\n21.045.00", "21.045.00"},
		{"long digits", "Project Number 2023045678", "2023045678"},
		{"short digits frequency", "Project No: 19145 sheet Project No: 19145 Project No: 20001", "19145"},
		{"short digits tie goes to larger", "Project No: 1234 Project No: 5678", "5678"},
		{"generic token", "Project No: A12-345", "A12-345"},
		{"standalone dotted", "SHEET S1.01 REF 21.045.00", "21.045.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Search(tt.text)
			require.False(t, got.IsAbsent())
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestJobNumberAbsent(t *testing.T) {
	s := NewJobNumberSearcher(DefaultCatalogue(), nil)
	for _, text := range []string{
		"",
		"Project No: DATE",
		"Project No: REVISIONS",
		"Project No: ABCDEF",
		"@@@ ### ~~~",
		"Project Number: ٢٢.٠٠.٠٩٢",
		"Project No: ١٩١٤٥",
		"REF ٢١.٠٤٥.٠٠",
	} {
		assert.True(t, s.Search(text).IsAbsent(), "text %q", text)
	}
}

func TestJobNumberIgnoresNonASCIIDigits(t *testing.T) {
	s := NewJobNumberSearcher(DefaultCatalogue(), nil)
	got := s.Search("Project Number: ٢٢.٠٠.٠٩٢ Project Number: 22.00.092")
	assert.Equal(t, "22.00.092", got.String())
}

func TestJobNumberTiersAreIndependent(t *testing.T) {
	s := NewJobNumberSearcher(DefaultCatalogue(), nil)

	_, winner := s.dottedTier("Project No: 19145.1")
	assert.Empty(t, winner, "single-digit sub-number is not a dotted segment")

	_, winner = s.shortDigitsTier("Project No: 19145.1")
	assert.Empty(t, winner)

	cands, winner := s.genericTier("Project No: 19145.1 Project No: 19145.2 Project No: 20000.1")
	assert.Len(t, cands, 3)
	assert.Equal(t, "19145", winner)

	_, winner = s.genericTier("Project No: 2021-045 Project No: SHEETS")
	assert.Empty(t, winner, "revision dates and sheet labels are not job numbers")

	_, winner = s.longDigitsTier("Project Number 12345678 Project Number 123456789")
	assert.Equal(t, "123456789", winner)
}

func TestJobNumberTrace(t *testing.T) {
	tr := &recordingTracer{}
	s := NewJobNumberSearcher(DefaultCatalogue(), tr)

	s.Search("Project Number 22.00.092.02")
	s.Search("")

	require.Len(t, tr.events, 2)
	assert.Equal(t, "dotted", tr.events[0].Tier)
	assert.Equal(t, "22.00.092.02", tr.events[0].Winner)
	assert.True(t, tr.events[1].Absent)
}

func TestCompareNumeric(t *testing.T) {
	assert.Equal(t, 1, compareNumeric("22.00.092.02", "21.99.999.99"))
	assert.Equal(t, -1, compareNumeric("999", "1000"))
	assert.Equal(t, 0, compareNumeric("0019145", "19145"))
	assert.Equal(t, 1, compareNumeric("123456789012345678901234567890", "99999999999999999999"))
	assert.Equal(t, 0, compareNumeric("", "ABC"))
	assert.Equal(t, "20", largestNumeric([]string{"10", "20", "2.0"}))
}
