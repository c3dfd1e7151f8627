package constants

import (
	"strings"
)

type Field string

const (
	JobNumber               Field = "job_number"
	DesignCode              Field = "design_code"
	RiskCategory            Field = "risk_category"
	SeismicDesignCategory   Field = "seismic_design_category"
	SiteClass               Field = "site_class"
	WindSpeed               Field = "wind_speed"
	Materials               Field = "materials"
	SeismicResistanceSystem Field = "seismic_resistance_system"
	ProjectName             Field = "project_name"
	Location                Field = "location"
)

// Sentinels written for fields that produced nothing.
const (
	NullValue    = "Null"
	UnknownValue = "Unknown"
)

var allFields = []Field{
	JobNumber,
	DesignCode,
	RiskCategory,
	SeismicDesignCategory,
	SiteClass,
	WindSpeed,
	Materials,
	SeismicResistanceSystem,
	ProjectName,
	Location,
}

// AllFields returns the fixed field set in record order.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allFields))
	for i, f := range allFields {
		result[i] = string(f)
	}
	return result
}

// UsesUnknownSentinel reports whether an absent value of f is spelled "Unknown"
// rather than null.
func (f Field) UsesUnknownSentinel() bool {
	return f == ProjectName || f == Location
}

// Canonicalize maps loose spellings ("Job Number", "design-codes", "SDC") onto a field.
func Canonicalize(input string) (Field, bool) {
	if input == "" {
		return "", false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	synonyms := map[string]Field{
		"job":                JobNumber,
		"job_no":             JobNumber,
		"project_number":     JobNumber,
		"design_codes":       DesignCode,
		"codes":              DesignCode,
		"risk":               RiskCategory,
		"sdc":                SeismicDesignCategory,
		"wind":               WindSpeed,
		"material":           Materials,
		"seismic_resistance": SeismicResistanceSystem,
		"lfrs":               SeismicResistanceSystem,
		"name":               ProjectName,
		"address":            Location,
	}
	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFields {
		if normalized == string(f) {
			return f, true
		}
	}
	return "", false
}
