package patterns

import (
	"regexp"
	"strings"

	"github.com/mfg-qc/crosscheck/constants"
)

// Canonical flight status values.
const (
	FlightStatusFlight       = "FLIGHT"
	FlightStatusNotForFlight = "NOT_FOR_FLIGHT"
)

var (
	// Board serials: VGN-NNNNN-NNNN; the bare NNNNN-NNNN shape is distinctive
	// enough to accept without the prefix.
	reBoardSerial = regexp.MustCompile(`(?i)\b((?:VGN[-_]?)?\d{5}[-_]\d{4})\b`)
	reBoardCanon  = regexp.MustCompile(`^(?:VGN-?)?(\d{5})-(\d{4})$`)

	// Unit serials: free-text matching requires the INF prefix; a bare 1-5
	// digit run is indistinguishable from job numbers and quantities.
	reUnitSerial = regexp.MustCompile(`(?i)\b(INF[-_]?\d{1,5})\b`)
	reUnitCanon  = regexp.MustCompile(`^(?:INF-?)?(\d{1,5})$`)

	// Part numbers: PCA/DRW + 4 digits + 2 digits, hyphens optional in input.
	rePartNumber = regexp.MustCompile(`(?i)\b((?:PCA|DRW)[-_]?\d{4}[-_]?\d{2})\b`)
	rePartCanon  = regexp.MustCompile(`^(PCA|DRW)-?(\d{4})-?(\d{2})$`)

	// Job numbers: a run of exactly 5 digits, preferring digits adjacent to
	// the word "Job". The standalone form carries a digit-boundary guard so a
	// fragment of a longer hyphenated identifier (e.g. a board serial) is not
	// mistaken for a job number.
	reJobAdjacent   = regexp.MustCompile(`(?i)\bjob\s*[:#]?\s*(\d{5})\b`)
	reJobStandalone = regexp.MustCompile(`\d{5}`)
	reJobCanon      = regexp.MustCompile(`^(?:JOB\s*[:#]?\s*)?(\d{5})$`)

	// Revisions: "Rev F2" style. The anchored form exists so canonical values
	// round-trip through the matcher; it can never fire inside a document.
	reRevision      = regexp.MustCompile(`(?i)\brev\.?\s*([A-Z][0-9]*)\b`)
	reRevisionCanon = regexp.MustCompile(`(?i)^([A-Z][0-9]*)$`)

	// Flight status: the EDU phrase, the canonical token, or a bare FLIGHT.
	reFlightStatus = regexp.MustCompile(`(?i)\b(EDU\s*[-–—]?\s*NOT\s+FOR\s+FLIGHT|NOT[_\s-]+FOR[_\s-]+FLIGHT|FLIGHT)\b`)

	reSeparators = strings.NewReplacer("_", "-", " ", "")
)

func defaultFamilies() map[constants.FieldKind]*family {
	return map[constants.FieldKind]*family{
		constants.FieldBoardSerial: {
			res:       []*regexp.Regexp{reBoardSerial},
			normalize: normalizeBoardSerial,
		},
		constants.FieldUnitSerial: {
			res:       []*regexp.Regexp{reUnitSerial},
			normalize: normalizeUnitSerial,
		},
		constants.FieldPartNumber: {
			res:       []*regexp.Regexp{rePartNumber},
			normalize: normalizePartNumber,
		},
		constants.FieldJobNumber: {
			res:       []*regexp.Regexp{reJobAdjacent},
			guarded:   []*regexp.Regexp{reJobStandalone},
			normalize: normalizeJobNumber,
		},
		constants.FieldRevision: {
			res:       []*regexp.Regexp{reRevision, reRevisionCanon},
			normalize: normalizeRevision,
		},
		constants.FieldFlightStatus: {
			res:       []*regexp.Regexp{reFlightStatus},
			normalize: normalizeFlightStatus,
		},
	}
}

func normalizeBoardSerial(raw string) (string, bool) {
	s := reSeparators.Replace(strings.ToUpper(strings.TrimSpace(raw)))
	m := reBoardCanon.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return "VGN-" + m[1] + "-" + m[2], true
}

func normalizeUnitSerial(raw string) (string, bool) {
	s := reSeparators.Replace(strings.ToUpper(strings.TrimSpace(raw)))
	m := reUnitCanon.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return "INF-" + m[1], true
}

func normalizePartNumber(raw string) (string, bool) {
	s := reSeparators.Replace(strings.ToUpper(strings.TrimSpace(raw)))
	m := rePartCanon.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1] + "-" + m[2] + "-" + m[3], true
}

func normalizeJobNumber(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	m := reJobCanon.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func normalizeRevision(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.TrimPrefix(s, "REV."))
	s = strings.TrimSpace(strings.TrimPrefix(s, "REV"))
	if !reRevisionCanon.MatchString(s) {
		return "", false
	}
	return s, true
}

func normalizeFlightStatus(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "EDU"), strings.Contains(s, "NOT"):
		return FlightStatusNotForFlight, true
	case strings.Contains(s, "FLIGHT"):
		return FlightStatusFlight, true
	}
	return "", false
}
