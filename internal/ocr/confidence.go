package ocr

import (
	"regexp"
	"strings"
)

var (
	reSerialish = regexp.MustCompile(`\b(?:vgn[-_]?)?\d{5}[-_]\d{4}\b|\binf[-_]?\d{1,5}\b`)
	rePartish   = regexp.MustCompile(`\b(?:pca|drw)[-_]?\d{4}[-_]?\d{2}\b`)
	reLabelish  = regexp.MustCompile(`\bjob\b|\brev\b|\bflight\b`)
)

// heuristicConfidence scores decoded text by how much it looks like a shop
// label. Tesseract's own word confidence stays flat on dense noise; seeing
// identifier shapes is a stronger signal that the orientation was right.
func heuristicConfidence(txt string) float32 {
	t := strings.ToLower(txt)
	score := float32(0.2) // base
	if reSerialish.MatchString(t) {
		score += 0.3
	}
	if rePartish.MatchString(t) {
		score += 0.2
	}
	if reLabelish.MatchString(t) {
		score += 0.15
	}
	if len(txt) > 40 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blendConfidence weights the engine's word confidence higher when present.
func blendConfidence(ocrConf float32, txt string) float32 {
	heur := heuristicConfidence(txt)
	if ocrConf <= 0 {
		return heur
	}
	conf := 0.7*ocrConf + 0.3*heur
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
