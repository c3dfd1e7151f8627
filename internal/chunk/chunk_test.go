package chunk

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesSplitsOnHeaders(t *testing.T) {
	page := "S-001 COVER\nGENERAL NOTES:\n1. ALL WORK PER IBC.\nDESIGN CRITERIA\nRISK CATEGORY II\nSITE CLASS D"
	got := Pages([]string{page, "   "}, DefaultOptions())

	require.Len(t, got, 2)
	assert.Equal(t, Chunk{Page: 1, Header: "GENERAL NOTES:", Text: "1. ALL WORK PER IBC.", Strategy: StrategyHeader}, got[0])
	assert.Equal(t, "DESIGN CRITERIA", got[1].Header)
	assert.Equal(t, "RISK CATEGORY II\nSITE CLASS D", got[1].Text)
	// "RISK CATEGORY II" carries a value, so it is not a header line
	assert.Len(t, splitByHeaders(page), 2)
}

func TestPagesParagraphFallback(t *testing.T) {
	got := Pages([]string{"", "first paragraph\n\nsecond paragraph"}, DefaultOptions())
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Page)
	assert.Equal(t, StrategyPara, got[0].Strategy)
	assert.Equal(t, "first paragraph\n\nsecond paragraph", got[0].Text)
}

func TestParagraphsOverlap(t *testing.T) {
	a := strings.Repeat("a", 30)
	b := strings.Repeat("b", 30)
	got := paragraphs(a+"\n\n"+b, Options{MaxChars: 40, Overlap: 5})

	require.Len(t, got, 2)
	assert.Equal(t, a, got[0])
	assert.Equal(t, "aaaaa "+b, got[1])
}

func TestParagraphsLongSentenceWindows(t *testing.T) {
	long := strings.Repeat("x", 25)
	got := paragraphs(long, Options{MaxChars: 10, Overlap: 0})
	assert.Equal(t, []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, got)

	for _, c := range paragraphs(long+". Short one.", Options{MaxChars: 10, Overlap: 2}) {
		assert.NotEmpty(t, c)
	}
}

func TestSentences(t *testing.T) {
	assert.Equal(t, []string{"One.", "Two?", "Three"}, sentences("One. Two? Three"))
}

func TestOptionsNormalized(t *testing.T) {
	o := Options{MaxChars: 10, Overlap: 50}.normalized()
	assert.Equal(t, 5, o.Overlap)
	assert.Equal(t, 1200, Options{}.normalized().MaxChars)
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, []Chunk{
		{Page: 1, Header: "LOADS", Text: "LL = 50 psf", Strategy: StrategyHeader},
		{Page: 2, Text: "A & B", Strategy: StrategyPara},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "LOADS", first["header"])
	assert.Contains(t, lines[1], `"A & B"`)
	assert.NotContains(t, lines[1], "header")
}
