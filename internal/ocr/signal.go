package ocr

import "regexp"

var (
	reJobLabel   = regexp.MustCompile(`(?i)\b(?:job|project)\s*(?:number|no\.?)`)
	reCodeName   = regexp.MustCompile(`(?i)\b(?:IBC|ASCE|ACI|AISC|building\s+code)\b`)
	reSeismic    = regexp.MustCompile(`(?i)\b(?:seismic|site\s+class|risk\s+category)\b`)
	reWind       = regexp.MustCompile(`(?i)\b\d{2,3}\s*mph\b`)
	reStructural = regexp.MustCompile(`(?i)\b(?:concrete|steel|masonry|timber|foundation)\b`)
)

// signalScore is a rough 0..1 estimate of how much structural-drawing
// vocabulary the text carries. Low scores flag documents for review.
func signalScore(txt string) float32 {
	score := float32(0.1) // base
	if reJobLabel.MatchString(txt) {
		score += 0.2
	}
	if reCodeName.MatchString(txt) {
		score += 0.2
	}
	if reSeismic.MatchString(txt) {
		score += 0.15
	}
	if reWind.MatchString(txt) {
		score += 0.1
	}
	if reStructural.MatchString(txt) {
		score += 0.15
	}
	if len(txt) > 500 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
