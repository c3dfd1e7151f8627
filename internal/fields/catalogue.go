package fields

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

// Pattern is one ordered catalogue entry. Group selects the informative
// capture; 0 means the whole match.
type Pattern struct {
	Name  string
	Expr  *regexp.Regexp
	Group int
}

// FindAll returns every non-overlapping match of p in text, in order of discovery.
func (p Pattern) FindAll(text string) []Candidate {
	var out []Candidate
	for _, loc := range p.Expr.FindAllStringSubmatchIndex(text, -1) {
		i := 2 * p.Group
		if i+1 >= len(loc) || loc[i] < 0 {
			continue
		}
		out = append(out, Candidate{Text: text[loc[i]:loc[i+1]], Offset: loc[i]})
	}
	return out
}

// First returns the earliest match of p in text.
func (p Pattern) First(text string) (Candidate, bool) {
	loc := p.Expr.FindStringSubmatchIndex(text)
	i := 2 * p.Group
	if loc == nil || i+1 >= len(loc) || loc[i] < 0 {
		return Candidate{}, false
	}
	return Candidate{Text: text[loc[i]:loc[i+1]], Offset: loc[i]}, true
}

// Rewrite is one ordered standardization rule.
type Rewrite struct {
	Name    string
	Expr    *regexp.Regexp
	Replace func(match string, groups []string) string
}

func (r Rewrite) Apply(s string) string {
	locs := r.Expr.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = s[loc[2*g]:loc[2*g+1]]
			}
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(r.Replace(groups[0], groups))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// template returns a Replace func expanding $n references.
func template(tpl string) func(string, []string) string {
	return func(_ string, groups []string) string {
		out := tpl
		for i := len(groups) - 1; i >= 1; i-- {
			out = strings.ReplaceAll(out, "$"+string(rune('0'+i)), groups[i])
		}
		return out
	}
}

// jobNumberCatalogue needs look-around, which RE2 does not offer.
type jobNumberCatalogue struct {
	dotted      *regexp2.Regexp
	longDigits  *regexp2.Regexp
	shortDigits *regexp2.Regexp
	generic     *regexp2.Regexp
	standalone  *regexp2.Regexp

	commaBetweenDigits *regexp2.Regexp
	spacedDot          *regexp2.Regexp
	horizontalSpace    *regexp.Regexp
	yearDash           *regexp.Regexp
	core               *regexp.Regexp
	stopwords          map[string]struct{}
}

// Catalogue is the process-wide pattern configuration shared by every searcher.
// It is built once and never modified afterwards.
type Catalogue struct {
	job jobNumberCatalogue

	designCodes  Pattern
	codeRewrites []Rewrite
	codeFamilies *regexp.Regexp

	riskCategory  []Pattern
	siteClass     []Pattern
	seismicDesign []Pattern

	windSpeed []Pattern

	materialTerms []string
	materials     Pattern

	seismicSystems []Pattern

	projectNameLines []Pattern
	projectNameDeny  []string

	locationKeywords []Pattern
}

var defaultCatalogue = sync.OnceValue(buildCatalogue)

// DefaultCatalogue returns the compiled-in catalogue.
func DefaultCatalogue() *Catalogue { return defaultCatalogue() }

// Materials returns the material vocabulary in match-priority order.
func (c *Catalogue) Materials() []string {
	return append([]string(nil), c.materialTerms...)
}

const jobLabel = `\b(?:B\s*&\s*P\s*Job\s*Number|Project\s*Number|Project\s*No\.?)[\s:=\-]{0,10}`

func mustRE2(expr string) *regexp2.Regexp {
	return regexp2.MustCompile(expr, regexp2.IgnoreCase)
}

func buildCatalogue() *Catalogue {
	c := &Catalogue{}

	c.job = jobNumberCatalogue{
		dotted:      mustRE2(jobLabel + `([0-9]{2,6}(?:\.[0-9]{2,6}){1,3})`),
		longDigits:  mustRE2(jobLabel + `([0-9]{8,10})`),
		shortDigits: mustRE2(jobLabel + `([0-9]{4,6})(?![.0-9])`),
		generic:     mustRE2(jobLabel + `([A-Z0-9.\-_/]{3,20})`),
		standalone:  mustRE2(`\b([0-9]{2,6}(?:\.[0-9]{2,6}){2,3})\b`),

		commaBetweenDigits: mustRE2(`(?<=[0-9]),(?=[0-9])`),
		spacedDot:          mustRE2(`(?<=[0-9])\s*\.\s*(?=[0-9])`),
		horizontalSpace:    regexp.MustCompile(`[^\S\r\n]+`),
		yearDash:           regexp.MustCompile(`^20\d{2}-\d{2,3}$`),
		core:               regexp.MustCompile(`^(\d{4,6})`),
		stopwords: map[string]struct{}{
			"DATE": {}, "REVISION": {}, "REVISIONS": {},
			"SHEET": {}, "SHEETS": {}, "DRAWING": {}, "DRAWINGS": {},
		},
	}

	c.designCodes = Pattern{Name: "design-codes", Expr: regexp.MustCompile(designCodeExpr)}
	c.codeRewrites = designCodeRewrites()
	c.codeFamilies = regexp.MustCompile(`(?i)\b(?:ASCE\s*/?\s*7|ACI\s*318|AISC\s*3(?:41|60)|AISI\s*S?100|TMS\s*(?:402|602)(?:\s*/\s*(?:402|602))?|AWS\s*D1\.1)\s*[-–/]?\s*\d{2}\b`)

	leader := `[\s:=.\-]*(?:(?i:is)[\s:=.\-]+)?`
	c.riskCategory = []Pattern{{
		Name:  "risk-category",
		Expr:  regexp.MustCompile(`(?i:\b(?:SEISMIC\s+)?RISK\s+(?:CATEGORY|CAT\.?))` + leader + `([IV]+|\d)\b`),
		Group: 1,
	}}
	c.siteClass = []Pattern{{
		Name:  "site-class",
		Expr:  regexp.MustCompile(`(?i:\bSITE\s+CLASS)\b` + leader + `([A-Z])\b`),
		Group: 1,
	}}
	c.seismicDesign = []Pattern{{
		Name:  "seismic-design-category",
		Expr:  regexp.MustCompile(`(?i:\bSEISMIC\s+DESIGN\s+CATEGORY|\bSDC)\b` + leader + `([A-Z])\b`),
		Group: 1,
	}}

	c.windSpeed = []Pattern{
		{
			Name: "labeled",
			Expr: regexp.MustCompile(`(?i)\b(?:VULT|V\s*ULT|V|(?:ULTIMATE|BASIC|NOMINAL)\s+(?:DESIGN\s+)?WIND\s+SPEED|DESIGN\s+WIND\s+SPEED)` +
				`(?:\s*\([^)]*\))?` +
				`\s*[:=\x{2013}\-]?\s*` +
				`(\d{2,3})\s*(?:mph|m\.?p\.?h\.?)\b`),
			Group: 1,
		},
		{
			Name:  "bare",
			Expr:  regexp.MustCompile(`(?i)\b(\d{2,3})\s*(?:mph|m\.?p\.?h\.?)\b`),
			Group: 1,
		},
	}

	c.materialTerms = sortByLengthDesc(materialVocabulary)
	alts := make([]string, len(c.materialTerms))
	for i, term := range c.materialTerms {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(term), ` `, `\s+`)
	}
	c.materials = Pattern{
		Name:  "materials",
		Expr:  regexp.MustCompile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`),
		Group: 1,
	}

	for i, expr := range seismicSystemExprs {
		c.seismicSystems = append(c.seismicSystems, Pattern{
			Name: fmt.Sprintf("seismic-system-%02d", i+1),
			Expr: regexp.MustCompile(`(?i)` + expr),
		})
	}

	c.projectNameLines = []Pattern{
		{Name: "project-name", Expr: regexp.MustCompile(`(?i)PROJECT\s*NAME\s*[:\-–]?\s*(.+)`), Group: 1},
		{Name: "title", Expr: regexp.MustCompile(`(?i)(?:PROJECT\s*TITLE|TITLE)\s*[:\-–]?\s*(.+)`), Group: 1},
		{Name: "for", Expr: regexp.MustCompile(`(?i)\bFOR\s+(.+?)(?:\s{2,}|$)`), Group: 1},
	}
	c.projectNameDeny = []string{
		"ISSUED FOR CONSTRUCTION", "GENERAL NOTES", "SHEET LIST",
		"COPYRIGHT", "PROJECT NO", "DATE", "REVISIONS", "COVER SHEET",
	}

	c.locationKeywords = []Pattern{
		{Name: "unit", Expr: regexp.MustCompile(`(?i)\b(?:SUITE|STE|BUILDING|BLDG|ROOM|RM)\b`)},
		{Name: "street", Expr: regexp.MustCompile(`(?i)\b(?:STREET|ST|AVENUE|AVE|ROAD|RD|BOULEVARD|BLVD|LANE|LN|PARKWAY|PKWY|DRIVE|DR|COURT|CT|WAY|HIGHWAY|HWY)\b`)},
		{Name: "state", Expr: regexp.MustCompile(`(?i)\b(?:GEORGIA|TEXAS|FLORIDA|ALABAMA|NORTH CAROLINA|SOUTH CAROLINA|TENNESSEE|GA|TX|FL|AL|NC|SC|TN)\b`)},
		{Name: "zip", Expr: regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)},
	}

	return c
}

const designCodeExpr = `(?i)\b(` +
	// national/state building codes
	`(?:THE\s+)?\d{4}\s+(?:[A-Z]+\s+){1,3}BUILDING\s+CODE\b|` +
	// model codes, either order
	`(?:IBC|International\s+Building\s+Code)[\s,]*\d{4}|` +
	`\d{4}\s*(?:the\s+)?(?:IBC|International\s+Building\s+Code)|` +
	`(?:UBC|Uniform\s+Building\s+Code)[\s,]*\d{4}|` +
	`\d{4}\s*(?:the\s+)?(?:UBC|Uniform\s+Building\s+Code)|` +
	`(?:CBC|California\s+Building\s+Code)[\s,]*\d{4}|` +
	`\d{4}\s*(?:the\s+)?(?:CBC|California\s+Building\s+Code)|` +
	`(?:FBC|Florida\s+Building\s+Code)[\s,]*\d{4}|` +
	`\d{4}\s*(?:the\s+)?(?:FBC|Florida\s+Building\s+Code)|` +
	`(?:IRC|International\s+Residential\s+Code)[\s,]*\d{4}|` +
	`\d{4}\s*(?:the\s+)?(?:IRC|International\s+Residential\s+Code)|` +
	`(?:NYBC|NYC\s*Building\s*Code)[\s,]*\d{4}|` +
	`\d{4}\s*(?:the\s+)?(?:NYBC|NYC\s*Building\s*Code)|` +
	`\d{4}\s*(?:the\s+)?North\s+Carolina\s+Building\s+Code|` +
	`North\s+Carolina\s+Building\s+Code[\s,]*\d{4}|` +
	`\d{4}\s*(?:the\s+)?[A-Z][a-z]+\s+State\s+Building\s+Code|` +
	`[A-Z][a-z]+\s+State\s+Building\s+Code[\s,]*\d{4}|` +
	// standards bodies
	`ASCE\s*[/\s]?7[-–]?\d{2}|` +
	`American\s+Society\s+of\s+Civil\s+Engineers\s+Standard\s+7[-–]?\d{2}|` +
	`ACI\s*318[-–]?\d{2}|` +
	`American\s+Concrete\s+Institute\s+Code\s+318[-–]?\d{2}|` +
	`AISC\s*360[-–]?\d{2}|` +
	`AISC\s*341[-–]?\d{2}|` +
	`American\s+Institute\s+of\s+Steel\s+Construction\s+(?:Specification|Standard)\s+3(?:41|60)[-–]?\d{2}|` +
	`AISI\s*S?100[-–]?\d{2}|` +
	`TMS\s*(?:402|602)(?:\s*/\s*(?:402|602))?[-/–]?\d{2}|` +
	`(?:The\s+)?Masonry\s+Code\s+(?:402|602)(?:\s*/\s*(?:402|602))?[-/–]?\d{2}|` +
	`NDS(?:\s*for\s*Wood\s*Construction)?|` +
	`National\s+Design\s+Specification\s+for\s+Wood\s+Construction|` +
	`AWS\s*D1\.1[-–]?\d{2}|` +
	`American\s+Welding\s+Society\s+Code\s+D1\.1[-–]?\d{2}|` +
	`AASHTO\s*LRFD|` +
	`AASHTO\s+Load\s+and\s+Resistance\s+Factor\s+Design|` +
	`NFPA\s*5000|` +
	`National\s+Fire\s+Protection\s+Association\s+5000|` +
	`BS\s*8110|` +
	`British\s+Standard\s+8110` +
	`)\b`

type codeFamily struct {
	abbr string
	name string
}

var modelCodeFamilies = []codeFamily{
	{"IBC", `International\s+Building\s+Code`},
	{"IRC", `International\s+Residential\s+Code`},
	{"UBC", `Uniform\s+Building\s+Code`},
	{"CBC", `California\s+Building\s+Code`},
	{"FBC", `Florida\s+Building\s+Code`},
	{"NYBC", `NYC\s*Building\s*Code`},
	{"NCBC", `North\s+Carolina\s+(?:State\s+)?Building\s+Code`},
}

func designCodeRewrites() []Rewrite {
	var rw []Rewrite
	rw = append(rw, Rewrite{
		Name:    "leading-article",
		Expr:    regexp.MustCompile(`(?i)^\s*THE\s+`),
		Replace: template(""),
	})
	// (a) "IBC, 2018" / "International Building Code\n2018" -> "2018 IBC"
	for _, f := range modelCodeFamilies {
		rw = append(rw, Rewrite{
			Name:    "fragment-" + strings.ToLower(f.abbr),
			Expr:    regexp.MustCompile(`(?i)\b(?:` + f.name + `|` + f.abbr + `)[,\s]+((?:19|20)\d{2})\b`),
			Replace: template("$1 " + f.abbr),
		})
	}
	// (b) phrase -> abbreviation
	for _, f := range modelCodeFamilies {
		rw = append(rw,
			Rewrite{
				Name:    "year-phrase-" + strings.ToLower(f.abbr),
				Expr:    regexp.MustCompile(`(?i)\b((?:19|20)\d{2})\s*(?:THE\s+)?` + f.name + `\b`),
				Replace: template("$1 " + f.abbr),
			},
			Rewrite{
				Name:    "phrase-" + strings.ToLower(f.abbr),
				Expr:    regexp.MustCompile(`(?i)\b` + f.name + `\b`),
				Replace: template(f.abbr),
			},
		)
	}
	phrases := []struct{ name, expr, tpl string }{
		{"nds", `\b(?:National\s+Design\s+Specification|NDS)\s*for\s*Wood\s*Construction\b`, "NDS"},
		{"asce", `\bAmerican\s+Society\s+of\s+Civil\s+Engineers\s+Standard\s+(7[-–]?\d{2})\b`, "ASCE $1"},
		{"aci", `\bAmerican\s+Concrete\s+Institute\s+Code\s+(318[-–]?\d{2})\b`, "ACI $1"},
		{"aisc", `\bAmerican\s+Institute\s+of\s+Steel\s+Construction\s+(?:Specification|Standard)\s+(3(?:41|60)[-–]?\d{2})\b`, "AISC $1"},
		{"tms", `\b(?:The\s+)?Masonry\s+Code\s+((?:402|602)(?:\s*/\s*(?:402|602))?[-/–]?\d{2})\b`, "TMS $1"},
		{"aws", `\bAmerican\s+Welding\s+Society\s+Code\s+(D1\.1[-–]?\d{2})\b`, "AWS $1"},
		{"aashto", `\bAASHTO\s*(?:LRFD|Load\s+and\s+Resistance\s+Factor\s+Design)\b`, "AASHTO LRFD"},
		{"nfpa", `\b(?:NFPA|National\s+Fire\s+Protection\s+Association)\s*5000\b`, "NFPA 5000"},
		{"bs", `\b(?:BS|British\s+Standard)\s*8110\b`, "BS 8110"},
	}
	for _, p := range phrases {
		rw = append(rw, Rewrite{
			Name:    "phrase-" + p.name,
			Expr:    regexp.MustCompile(`(?i)` + p.expr),
			Replace: template(p.tpl),
		})
	}
	return rw
}

var materialVocabulary = []string{
	// concrete
	"CONCRETE", "PRECAST", "PRECAST CONCRETE", "TILT-UP", "CAST-IN-PLACE",
	"CAST-IN-PLACE CONCRETE", "REINFORCED CONCRETE", "POST-TENSIONED CONCRETE",
	// steel
	"STEEL", "STRUCTURAL STEEL", "LIGHT GAUGE", "COLD-FORMED", "COLD-FORMED STEEL",
	"HOT-ROLLED", "WELDED STEEL", "METAL DECK", "BAR JOIST",
	// masonry
	"MASONRY", "CMU", "BRICK", "CONCRETE MASONRY", "STONE", "BLOCK WALL",
	// wood
	"WOOD", "TIMBER", "HEAVY TIMBER", "GLULAM", "LVL", "OSB", "PLYWOOD",
	"ENGINEERED WOOD", "JOISTS", "CROSS-LAMINATED TIMBER",
	// other metals
	"ALUMINUM", "COPPER", "BRASS", "GALVANIZED STEEL", "ZINC",
	// composites
	"COMPOSITE SLAB", "FIBERGLASS", "FRP", "CARBON FIBER", "GFRP", "PLASTIC", "PVC",
	// systems and hardware
	"TRUSS", "CABLE", "ANCHOR", "REBAR", "FASTENERS", "WELD", "BOLTED CONNECTION",
	"SHEAR WALL", "FOUNDATION",
}

// sortByLengthDesc orders terms longest first so a compound term wins over a
// shorter term it contains. Equal lengths sort alphabetically.
func sortByLengthDesc(terms []string) []string {
	out := append([]string(nil), terms...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

var seismicSystemExprs = []string{
	`STRUCTURAL\s+STEEL\s+SYSTEMS?\s+NOT\s+SPECIFICALLY\s+DETAILED\s+FOR\s+SEISMIC\s+RESISTANCE`,
	`(?:\bSTRUCTURAL\s+)?STEEL\s+SYSTEMS?\s+NOT\s+SPECIFICALLY\s+DESIGNED\s+FOR\s+SEISMIC\s+RESISTANCE`,
	`(?:\bSTRUCTURAL\s+)?STEEL\s+SYSTEM\s+NOT\s+SPECIFICALLY\s+DETAILED\s+FOR\s+SEISMIC(?:\s+RESISTANCE)?`,

	// steel
	`(?:\bSPECIAL|\bORDINARY|\bINTERMEDIATE)?\s*STEEL\s+MOMENT\s+FRAMES?`,
	`(?:\bSPECIAL|\bORDINARY|\bINTERMEDIATE)?\s*STEEL\s+CONCENTRICALLY\s+BRACED\s+FRAMES?`,
	`(?:\bSPECIAL|\bORDINARY)?\s*STEEL\s+ECCENTRICALLY\s+BRACED\s+FRAMES?`,
	`BUCKLING[-\s]*RESTRAINED\s+BRACED\s+FRAMES?`,
	`SPECIAL\s+TRUSS\s+MOMENT\s+FRAMES?`,
	`(?:\bORDINARY|\bSPECIAL)?\s*STEEL\s+PLATE\s+SHEAR\s+WALLS?`,

	// concrete
	`(?:\bSPECIAL|\bORDINARY|\bINTERMEDIATE)?\s*REINFORCED\s+CONCRETE\s+MOMENT\s+FRAMES?`,
	`(?:\bSPECIAL|\bORDINARY)?\s*(?:\bREINFORCED\s+)?CONCRETE\s+SHEAR\s+WALLS?`,
	`CONCRETE\s+DUAL\s+SYSTEMS?`,
	`WALL[-\s]*FRAME\s+SYSTEMS?`,

	// masonry
	`(?:\bSPECIAL|\bORDINARY|\bINTERMEDIATE)?\s*(?:\bREINFORCED|\bPLAIN)?\s*MASONRY\s+SHEAR\s+WALLS?`,
	`UNREINFORCED\s+MASONRY\s+(?:SHEAR\s+)?WALLS?`,

	// wood
	`(?:\bBRACED\s+)?WOOD\s+(?:SHEAR\s+WALLS?|PANELS?|DIAPHRAGMS?)`,
	`CROSS[-\s]*LAMINATED\s+TIMBER\s+(?:CLT\s+)?SHEAR\s+WALLS?`,
	`TIMBER\s+SHEAR\s+WALLS?`,

	// cold-formed steel
	`COLD[-\s]*FORMED\s+(?:STEEL\s+)?(?:SHEAR\s+WALLS?|BRACED\s+FRAMES?)`,
	`LIGHT[-\s]*GAUGE\s+STEEL\s+(?:SHEAR\s+WALLS?|FRAMES?)`,

	// precast
	`(?:\bORDINARY|\bSPECIAL)?\s*PRECAST\s+(?:CONCRETE\s+)?SHEAR\s+WALLS?`,

	// hybrid
	`DUAL\s+SYSTEMS?\s+(?:WITH\s+)?(?:\bSPECIAL|\bORDINARY|\bINTERMEDIATE)?\s*(?:MOMENT\s+FRAMES?|SHEAR\s+WALLS?)`,
	`WALL[-\s]*FRAME\s+COMBINATIONS?`,
	`INVERTED\s+PENDULUM\s+FRAMES?`,

	// isolation and dissipation
	`BASE\s+ISOLATION\s+(?:SYSTEMS?|BEARINGS?)`,
	`SEISMIC\s+ISOLATION\s+(?:SYSTEMS?|DEVICES?)`,
	`(?:ENERGY|SEISMIC)\s+DISSIPATION\s+DEVICES?`,
	`\bDAMPERS?\b|VISCOUS\s+BRACES?`,
	`PODIUM\s+STRUCTURES?\s+(?:WITH\s+)?TRANSFER\s+SLABS?`,
}
