// Package patterns holds the identifier grammars for every field family the
// cross-check cares about: how a value is recognized in raw text, and how a
// recognized value canonicalizes for comparison across sources.
package patterns

import (
	"fmt"
	"regexp"

	"github.com/mfg-qc/crosscheck/constants"
)

// Match is one raw hit of a family matcher, with its character span in the
// scanned text.
type Match struct {
	Raw   string
	Start int
	End   int
}

// normalizeFunc canonicalizes a raw value. ok=false means the value does not
// conform to the family format and must be rejected.
type normalizeFunc func(raw string) (canonical string, ok bool)

// family pairs an ordered list of matchers with the family's canonicalizer.
// Earlier matchers are higher-priority (e.g. "Job"-adjacent digits before
// standalone digit runs); overlapping later hits are discarded. Guarded
// matchers additionally require the hit to not touch an adjacent digit,
// hyphen, or underscore, so fragments of longer identifiers are skipped.
type family struct {
	res       []*regexp.Regexp
	guarded   []*regexp.Regexp
	normalize normalizeFunc
}

// Library resolves field kinds to their matcher and canonicalizer. A Library
// is immutable after construction and safe for concurrent use.
type Library struct {
	families map[constants.FieldKind]*family
}

// NewLibrary returns a Library with the built-in family definitions.
func NewLibrary() *Library {
	return &Library{families: defaultFamilies()}
}

// NewLibraryWithOverrides returns a Library whose matcher expressions are
// replaced per family by the given overrides. Canonicalizers are fixed: the
// canonical form is part of the comparison contract, only recognition is
// configurable.
func NewLibraryWithOverrides(ov Overrides) (*Library, error) {
	fams := defaultFamilies()
	for name, exprs := range ov.Patterns {
		kind := constants.FieldKind(name)
		fam, ok := fams[kind]
		if !ok {
			return nil, fmt.Errorf("patterns: unknown field kind %q", name)
		}
		res := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("patterns: %s: %w", name, err)
			}
			res = append(res, re)
		}
		if len(res) > 0 {
			fam.res = res
			fam.guarded = nil
		}
	}
	return &Library{families: fams}, nil
}

// Match scans text with the family's matchers and returns all raw hits in
// priority order. The raw value is capture group 1 when the expression has
// one, otherwise the whole match. Overlapping hits from lower-priority
// matchers are dropped.
func (l *Library) Match(kind constants.FieldKind, text string) []Match {
	fam, ok := l.families[kind]
	if !ok {
		return nil
	}
	var out []Match
	claimed := make([]span, 0, 4)
	collect := func(re *regexp.Regexp, guard bool) {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := rawSpan(idx)
			if guard && !digitBoundaryOK(text, start, end) {
				continue
			}
			if overlaps(claimed, start, end) {
				continue
			}
			claimed = append(claimed, span{start, end})
			out = append(out, Match{Raw: text[start:end], Start: start, End: end})
		}
	}
	for _, re := range fam.res {
		collect(re, false)
	}
	for _, re := range fam.guarded {
		collect(re, true)
	}
	return out
}

// digitBoundaryOK reports whether the span is not glued to a digit, hyphen,
// or underscore on either side.
func digitBoundaryOK(text string, start, end int) bool {
	isGlue := func(b byte) bool {
		return b == '-' || b == '_' || (b >= '0' && b <= '9')
	}
	if start > 0 && isGlue(text[start-1]) {
		return false
	}
	if end < len(text) && isGlue(text[end]) {
		return false
	}
	return true
}

// Normalize canonicalizes a raw value for the family. ok=false rejects the
// value. Normalize is idempotent: feeding a canonical value back returns it
// unchanged.
func (l *Library) Normalize(kind constants.FieldKind, raw string) (string, bool) {
	fam, ok := l.families[kind]
	if !ok {
		return "", false
	}
	return fam.normalize(raw)
}

// DecideFlightStatus applies the flight-status override rule to a text blob:
// an "EDU - NOT FOR FLIGHT" marking anywhere wins over any bare "FLIGHT"
// mention. ok=false means no flight marking was found at all.
func (l *Library) DecideFlightStatus(text string) (Match, bool) {
	matches := l.Match(constants.FieldFlightStatus, text)
	if len(matches) == 0 {
		return Match{}, false
	}
	for _, m := range matches {
		if canon, ok := l.Normalize(constants.FieldFlightStatus, m.Raw); ok && canon == FlightStatusNotForFlight {
			return m, true
		}
	}
	return matches[0], true
}

type span struct{ start, end int }

func overlaps(claimed []span, start, end int) bool {
	for _, s := range claimed {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

// rawSpan picks capture group 1 when present, else the whole match.
func rawSpan(idx []int) (int, int) {
	if len(idx) >= 4 && idx[2] >= 0 {
		return idx[2], idx[3]
	}
	return idx[0], idx[1]
}
