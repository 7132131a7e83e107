package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/common"
	"github.com/mfg-qc/crosscheck/internal/facts"
)

// Input carries the three fact sets. A nil fact set means the document was
// absent or failed extraction; checks still run against an empty set so the
// report never silently under-reports.
type Input struct {
	Traveler *facts.FactSet
	BOM      *facts.FactSet
	Images   *facts.FactSet
}

// Engine runs the cross-validation checks. Stateless and safe for concurrent
// use.
type Engine struct {
	cfg    common.CheckConfig
	logger *slog.Logger
}

func New(cfg common.CheckConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Validate runs every check in fixed priority order. Checks never
// short-circuit: each runs regardless of earlier outcomes so a single report
// always shows the complete picture.
func (e *Engine) Validate(in Input) []Finding {
	var missing []constants.DocumentKind
	traveler := in.Traveler
	if traveler == nil {
		traveler = facts.Empty(constants.DocTraveler)
		missing = append(missing, constants.DocTraveler)
	}
	bom := in.BOM
	if bom == nil {
		bom = facts.Empty(constants.DocBOM)
		missing = append(missing, constants.DocBOM)
	}
	images := in.Images
	if images == nil {
		images = facts.Empty(constants.DocImageSet)
		missing = append(missing, constants.DocImageSet)
	}

	var findings []Finding
	findings = append(findings, e.checkJobNumber(traveler, bom)...)
	findings = append(findings, e.checkPartNumbers(traveler, bom, images, in.BOM != nil)...)
	findings = append(findings, e.checkSerials(traveler, images, in.Traveler != nil)...)
	findings = append(findings, e.checkRevision(traveler, bom)...)
	findings = append(findings, e.checkMissingDocuments(missing)...)
	findings = append(findings, e.checkFlightStatus(traveler, images, in.Images != nil)...)

	// Individual checks only ever emit WARNING or CRITICAL; the single PASS
	// finding exists exactly when every check stayed silent.
	if len(findings) == 0 {
		findings = append(findings, Finding{
			CheckID:  constants.CheckSummary,
			Severity: constants.SeverityPass,
			Message:  "all available cross-checks agreed",
		})
	}

	e.logger.Debug("validation complete", "findings", len(findings))
	return findings
}

// Check 1: traveler and BOM must agree on the job number. Absence is lower
// severity than contradiction.
func (e *Engine) checkJobNumber(traveler, bom *facts.FactSet) []Finding {
	var out []Finding

	tJob, tOK := traveler.Best(constants.FieldJobNumber)
	bJob, bOK := bom.Best(constants.FieldJobNumber)

	switch {
	case tOK && bOK && tJob.Canonical != bJob.Canonical:
		out = append(out, critical(constants.CheckJobNumber, constants.FieldJobNumber,
			map[constants.DocumentKind]string{
				constants.DocTraveler: tJob.Canonical,
				constants.DocBOM:      bJob.Canonical,
			},
			fmt.Sprintf("job number mismatch: traveler has %s, BOM has %s", tJob.Canonical, bJob.Canonical)))
	case !tOK || !bOK:
		values := map[constants.DocumentKind]string{}
		var absent []string
		if tOK {
			values[constants.DocTraveler] = tJob.Canonical
		} else {
			absent = append(absent, "traveler")
		}
		if bOK {
			values[constants.DocBOM] = bJob.Canonical
		} else {
			absent = append(absent, "BOM")
		}
		out = append(out, warning(constants.CheckJobNumber, constants.FieldJobNumber, values,
			"cannot confirm job number: no job number in "+strings.Join(absent, " or ")))
	}

	out = append(out, e.ambiguity(constants.FieldJobNumber, traveler, bom)...)
	return out
}

// Check 2: every part number seen on the traveler or the unit itself must be
// in the BOM. One CRITICAL finding per missing value. When the BOM document
// itself is absent there is nothing to contradict: absence is lower severity
// than contradiction, so a single WARNING covers the kind.
func (e *Engine) checkPartNumbers(traveler, bom, images *facts.FactSet, bomPresent bool) []Finding {
	var out []Finding

	if !bomPresent {
		if len(traveler.Canonicals(constants.FieldPartNumber)) > 0 || len(images.Canonicals(constants.FieldPartNumber)) > 0 {
			out = append(out, warning(constants.CheckPartNumber, constants.FieldPartNumber, nil,
				"cannot confirm part numbers: no BOM available"))
		}
		return out
	}

	reported := make(map[string]bool)
	flag := func(src constants.DocumentKind, canonical string) {
		if reported[canonical] || bom.Has(constants.FieldPartNumber, canonical) {
			return
		}
		reported[canonical] = true
		out = append(out, critical(constants.CheckPartNumber, constants.FieldPartNumber,
			map[constants.DocumentKind]string{src: canonical},
			fmt.Sprintf("part number %s (from %s) is missing from the BOM", canonical, strings.ToLower(string(src)))))
	}
	for _, v := range traveler.Canonicals(constants.FieldPartNumber) {
		flag(constants.DocTraveler, v)
	}
	for _, v := range images.Canonicals(constants.FieldPartNumber) {
		flag(constants.DocImageSet, v)
	}
	return out
}

// Check 3: a serial recognized on the unit photo must appear on the traveler.
// With no traveler at all the serial cannot be contradicted, only left
// unconfirmed.
func (e *Engine) checkSerials(traveler, images *facts.FactSet, travelerPresent bool) []Finding {
	var out []Finding
	for _, kind := range []constants.FieldKind{constants.FieldBoardSerial, constants.FieldUnitSerial} {
		for _, v := range images.Canonicals(kind) {
			if traveler.Has(kind, v) {
				continue
			}
			if !travelerPresent {
				out = append(out, warning(constants.CheckSerialNumber, kind,
					map[constants.DocumentKind]string{constants.DocImageSet: v},
					fmt.Sprintf("cannot confirm serial %s: no traveler available", v)))
				continue
			}
			out = append(out, critical(constants.CheckSerialNumber, kind,
				map[constants.DocumentKind]string{constants.DocImageSet: v},
				fmt.Sprintf("serial %s recognized on the unit does not appear on the traveler", v)))
		}
	}
	return out
}

// Check 4: traveler and BOM revisions must agree. A same-letter difference
// (F2 vs F) is a family-level warning unless strict mode escalates it; a
// different leading letter is a contradiction.
func (e *Engine) checkRevision(traveler, bom *facts.FactSet) []Finding {
	var out []Finding

	tRev, tOK := traveler.Best(constants.FieldRevision)
	bRev, bOK := bom.Best(constants.FieldRevision)
	if tOK && bOK && tRev.Canonical != bRev.Canonical {
		values := map[constants.DocumentKind]string{
			constants.DocTraveler: tRev.Canonical,
			constants.DocBOM:      bRev.Canonical,
		}
		if tRev.Canonical[0] == bRev.Canonical[0] && !e.cfg.RevisionStrict {
			out = append(out, warning(constants.CheckRevision, constants.FieldRevision, values,
				fmt.Sprintf("revision format difference: traveler has %s, BOM has %s", tRev.Canonical, bRev.Canonical)))
		} else {
			out = append(out, critical(constants.CheckRevision, constants.FieldRevision, values,
				fmt.Sprintf("revision mismatch: traveler has %s, BOM has %s", tRev.Canonical, bRev.Canonical)))
		}
	}

	out = append(out, e.ambiguity(constants.FieldRevision, traveler, bom)...)
	return out
}

// Check 5: a document kind with no fact set at all is reported, and its
// fields read as absent everywhere else rather than skipping checks.
func (e *Engine) checkMissingDocuments(missing []constants.DocumentKind) []Finding {
	var out []Finding
	for _, kind := range missing {
		out = append(out, warning(constants.CheckFileComplete, "",
			nil, fmt.Sprintf("missing file type: %s (not uploaded or extraction failed)", kind)))
	}
	return out
}

// Check 6: flight-status marking on the unit photo versus the traveler.
func (e *Engine) checkFlightStatus(traveler, images *facts.FactSet, imagesPresent bool) []Finding {
	if !imagesPresent {
		return nil // already reported by check 5
	}
	var out []Finding

	iStatus, iOK := images.Best(constants.FieldFlightStatus)
	tStatus, tOK := traveler.Best(constants.FieldFlightStatus)

	switch {
	case !iOK:
		out = append(out, warning(constants.CheckFlightStatus, constants.FieldFlightStatus, nil,
			"flight-status marking not clearly detected on the unit photo"))
	case tOK && iStatus.Canonical != tStatus.Canonical:
		out = append(out, critical(constants.CheckFlightStatus, constants.FieldFlightStatus,
			map[constants.DocumentKind]string{
				constants.DocTraveler: tStatus.Canonical,
				constants.DocImageSet: iStatus.Canonical,
			},
			fmt.Sprintf("flight-status contradiction: traveler says %s, unit is marked %s", tStatus.Canonical, iStatus.Canonical)))
	}

	out = append(out, e.ambiguityOne(constants.FieldFlightStatus, images)...)
	return out
}

// ambiguity reports singular fields that matched more than one canonical
// value in a source. Ambiguity is never silently resolved without a trace.
func (e *Engine) ambiguity(kind constants.FieldKind, sets ...*facts.FactSet) []Finding {
	var out []Finding
	for _, fs := range sets {
		out = append(out, e.ambiguityOne(kind, fs)...)
	}
	return out
}

func (e *Engine) ambiguityOne(kind constants.FieldKind, fs *facts.FactSet) []Finding {
	alts := fs.Alternatives(kind)
	if len(alts) == 0 {
		return nil
	}
	best, _ := fs.Best(kind)
	discarded := make([]string, len(alts))
	for i, a := range alts {
		discarded[i] = a.Canonical
	}
	return []Finding{warning(constants.CheckAmbiguousField, kind,
		map[constants.DocumentKind]string{fs.DocumentKind(): best.Canonical},
		fmt.Sprintf("ambiguous %s in %s: compared %s, discarded %s",
			kind, fs.DocumentKind(), best.Canonical, strings.Join(discarded, ", ")))}
}
