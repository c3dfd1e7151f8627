package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

func TestDesignCode(t *testing.T) {
	s := NewDesignCodeSearcher(DefaultCatalogue(), nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"year and name variants collapse", "2018 IBC, ibc 2018, 2018 International Building Code", "2018 IBC"},
		{"designators compacted", "ASCE 7-16 and ACI 318-19", "ACI318-19, ASCE7-16"},
		{"long names abbreviated", "American Concrete Institute Code 318-14", "ACI318-14"},
		{"wood spec", "National Design Specification for Wood Construction", "NDS"},
		{"state code", "2018 North Carolina State Building Code", "2018 NCBC"},
		{"combined masonry code", "Masonry per TMS 402/602-16", "TMS402/602-16"},
		{"combined masonry code by name", "The Masonry Code 402/602-16", "TMS402/602-16"},
		{"single masonry code", "TMS 402-13", "TMS402-13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := s.Search(tt.text)
			require.False(t, raw.IsAbsent())
			assert.Equal(t, tt.want, s.Standardize(raw).String())
		})
	}
}

func TestDesignCodeSearchIsSortedAndDistinct(t *testing.T) {
	s := NewDesignCodeSearcher(DefaultCatalogue(), nil)
	got := s.Search("ASCE 7-16 then ACI 318-19 then ASCE 7-16 again")
	assert.Equal(t, []string{"ACI 318-19", "ASCE 7-16"}, got.Items)
	assert.Equal(t, "ACI 318-19, ASCE 7-16", got.String())
}

func TestDesignCodeKeepsCombinedMasonryDesignator(t *testing.T) {
	s := NewDesignCodeSearcher(DefaultCatalogue(), nil)
	got := s.Search("ACI 318-14 and TMS 402/602-16")
	assert.Equal(t, []string{"ACI 318-14", "TMS 402/602-16"}, got.Items)
}

func TestDesignCodeAbsent(t *testing.T) {
	s := NewDesignCodeSearcher(DefaultCatalogue(), nil)
	v := s.Search("GENERAL NOTES ONLY")
	assert.True(t, v.IsAbsent())
	assert.True(t, s.Standardize(v).IsAbsent())
}

func TestCategories(t *testing.T) {
	cat := DefaultCatalogue()
	site := NewSiteClassSearcher(cat, nil)
	risk := NewRiskCategorySearcher(cat, nil)
	sdc := NewSeismicDesignCategorySearcher(cat, nil)

	assert.Equal(t, "D", site.Search("SITE CLASS ............ D").String())
	assert.True(t, site.Search("SITE CLASS Z").IsAbsent())
	assert.Equal(t, "C", site.Search("Site Class is C").String())
	assert.True(t, site.Search("SITE CLASS DEFAULT").IsAbsent())

	raw := risk.Search("RISK CATEGORY: 2\nRisk Category II")
	assert.Equal(t, []string{"2", "II"}, raw.Items)
	assert.Equal(t, "II", risk.Standardize(raw).String())
	assert.Equal(t, "III", risk.Standardize(risk.Search("RISK CATEGORY IS III")).String())
	assert.True(t, risk.Search("RISK CATEGORY 7").IsAbsent())

	assert.Equal(t, "C, D", sdc.Search("SEISMIC DESIGN CATEGORY = D, SDC C").String())
	assert.True(t, sdc.Search("SEISMIC DESIGN CATEGORY F").IsAbsent())
}

func TestWindSpeed(t *testing.T) {
	s := NewWindSpeedSearcher(DefaultCatalogue(), nil)

	assert.Equal(t, "115 mph", s.Search("ULTIMATE WIND SPEED (3-SEC GUST) = 115 MPH\nservice 90 mph").String())
	assert.Equal(t, "120 mph", s.Search("VULT = 120 mph").String())
	assert.Equal(t, "90 mph", s.Search("gusts of 90 mph").String())
	assert.Equal(t, "105 mph", s.Search("exposure C, 105MPH").String())
	assert.True(t, s.Search("no wind data").IsAbsent())
}

func TestMaterials(t *testing.T) {
	s := NewMaterialsSearcher(DefaultCatalogue(), nil)

	got := s.Search("CAST-IN-PLACE CONCRETE columns and CONCRETE footings")
	assert.True(t, got.IsList())
	assert.Equal(t, []string{"CAST-IN-PLACE CONCRETE", "CONCRETE"}, got.Items)

	got = s.Search("concrete and Steel, concrete\nSTRUCTURAL\nSTEEL")
	assert.Equal(t, []string{"CONCRETE", "STEEL", "STRUCTURAL STEEL"}, got.Items)

	assert.True(t, s.Search("nothing relevant").IsAbsent())
}

func TestMaterialsVocabularyOrder(t *testing.T) {
	terms := DefaultCatalogue().Materials()
	for i := 1; i < len(terms); i++ {
		assert.GreaterOrEqual(t, len(terms[i-1]), len(terms[i]))
	}
	terms[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultCatalogue().Materials()[0])
}

func TestSeismicResistanceSuppression(t *testing.T) {
	s := NewSeismicResistanceSearcher(DefaultCatalogue(), nil)

	got := s.Search("LATERAL SYSTEM: STEEL MOMENT FRAMES. ALSO SPECIAL STEEL MOMENT FRAMES AT GRID 3")
	assert.Equal(t, []string{"SPECIAL STEEL MOMENT FRAMES"}, got.Items)

	got = s.Search("wood shear walls\nand buckling-restrained braced frames")
	assert.Equal(t, []string{"BUCKLING-RESTRAINED BRACED FRAMES", "WOOD SHEAR WALLS"}, got.Items)

	assert.True(t, s.Search("").IsAbsent())
}

func TestSeismicResistanceQualifierIsWholeWord(t *testing.T) {
	s := NewSeismicResistanceSearcher(DefaultCatalogue(), nil)

	got := s.Search("EXTRAORDINARY STEEL MOMENT FRAMES")
	assert.Equal(t, []string{"STEEL MOMENT FRAMES"}, got.Items)

	got = s.Search("NONSPECIAL STEEL CONCENTRICALLY BRACED FRAMES")
	assert.Equal(t, []string{"STEEL CONCENTRICALLY BRACED FRAMES"}, got.Items)

	got = s.Search("ORDINARY STEEL MOMENT FRAMES")
	assert.Equal(t, []string{"ORDINARY STEEL MOMENT FRAMES"}, got.Items)
}

func TestSuppressSubstrings(t *testing.T) {
	got := suppressSubstrings([]string{"STEEL MOMENT FRAMES", "SPECIAL STEEL MOMENT FRAMES", "DAMPERS"})
	assert.Equal(t, []string{"SPECIAL STEEL MOMENT FRAMES", "DAMPERS"}, got)
}

func TestProjectName(t *testing.T) {
	s := NewProjectNameSearcher(DefaultCatalogue(), nil)

	assert.Equal(t, "RIVERSIDE MEDICAL OFFICE", s.Search("PROJECT NAME: RIVERSIDE MEDICAL OFFICE").String())
	assert.Equal(t, "GREENVILLE FIRE STATION NO 4",
		s.Search("PROJECT NAME: COVER SHEET\nGREENVILLE FIRE STATION NO 4").String())
	assert.Equal(t, constants.UnknownValue, s.Search("").String())
	assert.Equal(t, constants.UnknownValue, s.Search("just some lower case words").String())
}

func TestLocation(t *testing.T) {
	s := NewLocationSearcher(DefaultCatalogue(), nil)

	text := "ACME ENGINEERING\n1200 PEACHTREE STREET NE\nATLANTA, GA 30309"
	assert.Equal(t, text, s.Search(text).String())
	assert.Equal(t, constants.UnknownValue, s.Search("STE 5").String())
	assert.Equal(t, constants.UnknownValue, s.Search("").String())
}

func TestSearchersNeverPanic(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"\n\n\n",
		"@@@@ ~~~ \x00\x01 ((( [[[ \\\\",
		strings.Repeat("Project No: ", 200),
		strings.Repeat("9.", 500),
		"SITE CLASS",
		"\xff\xfe invalid utf8",
	}
	for _, s := range NewBuilder(DefaultCatalogue()).Searchers() {
		for _, in := range inputs {
			assert.NotPanics(t, func() {
				v := s.Standardize(s.Search(in))
				_, err := v.MarshalJSON()
				assert.NoError(t, err)
			}, "field %s input %q", s.Field(), in)
		}
	}
}

func TestStandardizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"2018 IBC, ibc 2018, 2018 International Building Code",
		"ASCE 7-16, ACI 318 -19, AISC 360-16, TMS 402-16, The Masonry Code 602-13",
		"IBC, 2015 and the 2012 Florida Building Code and NDS for Wood Construction",
		"RISK CATEGORY 3 RISK CATEGORY IV SEISMIC DESIGN CATEGORY B SITE CLASS E",
		"CONCRETE and SPECIAL STEEL MOMENT FRAMES at 115 mph",
	}
	for _, s := range NewBuilder(DefaultCatalogue()).Searchers() {
		for _, in := range inputs {
			once := s.Standardize(s.Search(in))
			twice := s.Standardize(once)
			assert.Equal(t, once, twice, "field %s input %q", s.Field(), in)
		}
	}
}
