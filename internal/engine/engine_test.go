package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/common"
	"github.com/mfg-qc/crosscheck/internal/extract"
	"github.com/mfg-qc/crosscheck/internal/facts"
	"github.com/mfg-qc/crosscheck/internal/patterns"
)

// buildSet is a test helper assembling a fact set from kind/raw pairs with
// uniform confidence.
func buildSet(t *testing.T, doc constants.DocumentKind, pairs ...[2]string) *facts.FactSet {
	t.Helper()
	b := facts.NewBuilder(patterns.NewLibrary(), nil)
	var raws []extract.RawField
	for _, p := range pairs {
		raws = append(raws, extract.RawField{
			Kind:         constants.FieldKind(p[0]),
			Raw:          p[1],
			DocumentKind: doc,
			Confidence:   0.9,
		})
	}
	return b.Build(doc, raws)
}

func newEngine() *Engine {
	return New(common.CheckConfig{}, nil)
}

func findByCheck(findings []Finding, id constants.CheckID) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.CheckID == id {
			out = append(out, f)
		}
	}
	return out
}

func matchingTrio(t *testing.T) Input {
	return Input{
		Traveler: buildSet(t, constants.DocTraveler,
			[2]string{"JOB_NUMBER", "Job 12345"},
			[2]string{"PART_NUMBER", "PCA-1555-01"},
			[2]string{"BOARD_SERIAL", "VGN-12345-0001"},
			[2]string{"REVISION", "Rev F2"},
			[2]string{"FLIGHT_STATUS", "FLIGHT"},
		),
		BOM: buildSet(t, constants.DocBOM,
			[2]string{"JOB_NUMBER", "12345"},
			[2]string{"PART_NUMBER", "PCA-1555-01"},
			[2]string{"REVISION", "F2"},
		),
		Images: buildSet(t, constants.DocImageSet,
			[2]string{"BOARD_SERIAL", "12345-0001"},
			[2]string{"PART_NUMBER", "PCA-1555-01"},
			[2]string{"FLIGHT_STATUS", "FLIGHT"},
		),
	}
}

// Scenario 6: everything matches -> exactly one PASS finding.
func TestValidate_AllAgree(t *testing.T) {
	findings := newEngine().Validate(matchingTrio(t))

	require.Len(t, findings, 1)
	assert.Equal(t, constants.CheckSummary, findings[0].CheckID)
	assert.Equal(t, constants.SeverityPass, findings[0].Severity)
}

// Scenario 1: "Job 12345" and "12345" canonicalize equal -> no job finding.
func TestValidate_JobNumbersCanonicalizeEqual(t *testing.T) {
	in := matchingTrio(t)
	findings := newEngine().Validate(in)
	assert.Empty(t, findByCheck(findings, constants.CheckJobNumber))
}

// Scenario 2: differing job numbers -> CRITICAL with both values.
func TestValidate_JobNumberMismatch(t *testing.T) {
	in := matchingTrio(t)
	in.Traveler = buildSet(t, constants.DocTraveler,
		[2]string{"JOB_NUMBER", "54321"},
		[2]string{"PART_NUMBER", "PCA-1555-01"},
		[2]string{"BOARD_SERIAL", "VGN-12345-0001"},
		[2]string{"REVISION", "Rev F2"},
		[2]string{"FLIGHT_STATUS", "FLIGHT"},
	)

	findings := newEngine().Validate(in)
	jobs := findByCheck(findings, constants.CheckJobNumber)
	require.Len(t, jobs, 1)
	assert.Equal(t, constants.SeverityCritical, jobs[0].Severity)
	assert.Equal(t, "54321", jobs[0].ValuesCompared[constants.DocTraveler])
	assert.Equal(t, "12345", jobs[0].ValuesCompared[constants.DocBOM])
}

// Absence is lower severity than contradiction.
func TestValidate_JobNumberAbsent(t *testing.T) {
	in := matchingTrio(t)
	in.BOM = buildSet(t, constants.DocBOM,
		[2]string{"PART_NUMBER", "PCA-1555-01"},
		[2]string{"REVISION", "F2"},
	)

	findings := newEngine().Validate(in)
	jobs := findByCheck(findings, constants.CheckJobNumber)
	require.Len(t, jobs, 1)
	assert.Equal(t, constants.SeverityWarning, jobs[0].Severity)
	assert.Contains(t, jobs[0].Message, "cannot confirm job number")
}

func TestValidate_MissingPartNumber(t *testing.T) {
	in := matchingTrio(t)
	in.Traveler = buildSet(t, constants.DocTraveler,
		[2]string{"JOB_NUMBER", "12345"},
		[2]string{"PART_NUMBER", "PCA-1555-01"},
		[2]string{"PART_NUMBER", "DRW-9999-01"}, // not in BOM
		[2]string{"BOARD_SERIAL", "VGN-12345-0001"},
		[2]string{"REVISION", "Rev F2"},
		[2]string{"FLIGHT_STATUS", "FLIGHT"},
	)

	findings := newEngine().Validate(in)
	parts := findByCheck(findings, constants.CheckPartNumber)
	require.Len(t, parts, 1)
	assert.Equal(t, constants.SeverityCritical, parts[0].Severity)
	assert.Equal(t, "DRW-9999-01", parts[0].ValuesCompared[constants.DocTraveler])
}

// Scenario 3: image serial normalizes to a traveler serial -> no finding.
func TestValidate_SerialNormalizedMatch(t *testing.T) {
	findings := newEngine().Validate(matchingTrio(t))
	assert.Empty(t, findByCheck(findings, constants.CheckSerialNumber))
}

func TestValidate_SerialContradiction(t *testing.T) {
	in := matchingTrio(t)
	in.Images = buildSet(t, constants.DocImageSet,
		[2]string{"BOARD_SERIAL", "99999-0009"},
		[2]string{"PART_NUMBER", "PCA-1555-01"},
		[2]string{"FLIGHT_STATUS", "FLIGHT"},
	)

	findings := newEngine().Validate(in)
	serials := findByCheck(findings, constants.CheckSerialNumber)
	require.Len(t, serials, 1)
	assert.Equal(t, constants.SeverityCritical, serials[0].Severity)
	assert.Equal(t, "VGN-99999-0009", serials[0].ValuesCompared[constants.DocImageSet])
}

// Scenario 4: Rev F2 vs Rev F -> same family, WARNING.
func TestValidate_RevisionSameLetter(t *testing.T) {
	in := matchingTrio(t)
	in.BOM = buildSet(t, constants.DocBOM,
		[2]string{"JOB_NUMBER", "12345"},
		[2]string{"PART_NUMBER", "PCA-1555-01"},
		[2]string{"REVISION", "F"},
	)

	findings := newEngine().Validate(in)
	revs := findByCheck(findings, constants.CheckRevision)
	require.Len(t, revs, 1)
	assert.Equal(t, constants.SeverityWarning, revs[0].Severity)
}

func TestValidate_RevisionDifferentLetter(t *testing.T) {
	in := matchingTrio(t)
	in.BOM = buildSet(t, constants.DocBOM,
		[2]string{"JOB_NUMBER", "12345"},
		[2]string{"PART_NUMBER", "PCA-1555-01"},
		[2]string{"REVISION", "G"},
	)

	findings := newEngine().Validate(in)
	revs := findByCheck(findings, constants.CheckRevision)
	require.Len(t, revs, 1)
	assert.Equal(t, constants.SeverityCritical, revs[0].Severity)
}

func TestValidate_RevisionStrictEscalates(t *testing.T) {
	in := matchingTrio(t)
	in.BOM = buildSet(t, constants.DocBOM,
		[2]string{"JOB_NUMBER", "12345"},
		[2]string{"PART_NUMBER", "PCA-1555-01"},
		[2]string{"REVISION", "F"},
	)

	e := New(common.CheckConfig{RevisionStrict: true}, nil)
	revs := findByCheck(e.Validate(in), constants.CheckRevision)
	require.Len(t, revs, 1)
	assert.Equal(t, constants.SeverityCritical, revs[0].Severity)
}

// Scenario 5: BOM missing entirely -> completeness WARNING plus absence
// warnings, never a CRITICAL, and downstream checks still run.
func TestValidate_MissingBOM(t *testing.T) {
	in := matchingTrio(t)
	in.BOM = nil

	findings := newEngine().Validate(in)

	missing := findByCheck(findings, constants.CheckFileComplete)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, string(constants.DocBOM))

	for _, f := range findings {
		assert.NotEqual(t, constants.SeverityCritical, f.Severity,
			"absence must never produce CRITICAL: %+v", f)
	}

	jobs := findByCheck(findings, constants.CheckJobNumber)
	require.Len(t, jobs, 1, "job check still runs against the empty set")
	assert.Equal(t, constants.SeverityWarning, jobs[0].Severity)

	parts := findByCheck(findings, constants.CheckPartNumber)
	require.Len(t, parts, 1)
	assert.Equal(t, constants.SeverityWarning, parts[0].Severity)
}

// Missing image set: checks 2 and 3 still run and must not crash.
func TestValidate_MissingImages(t *testing.T) {
	in := matchingTrio(t)
	in.Images = nil

	findings := newEngine().Validate(in)
	assert.Empty(t, findByCheck(findings, constants.CheckSerialNumber))
	assert.Empty(t, findByCheck(findings, constants.CheckFlightStatus),
		"no flight-status finding when the image set itself is missing")
	require.Len(t, findByCheck(findings, constants.CheckFileComplete), 1)
}

// Everything unextractable -> only completeness and absence warnings.
func TestValidate_NothingExtractable(t *testing.T) {
	findings := newEngine().Validate(Input{})

	require.NotEmpty(t, findings)
	assert.Len(t, findByCheck(findings, constants.CheckFileComplete), 3)
	for _, f := range findings {
		assert.Equal(t, constants.SeverityWarning, f.Severity)
	}
}

func TestValidate_FlightStatusContradiction(t *testing.T) {
	in := matchingTrio(t)
	in.Images = buildSet(t, constants.DocImageSet,
		[2]string{"BOARD_SERIAL", "12345-0001"},
		[2]string{"PART_NUMBER", "PCA-1555-01"},
		[2]string{"FLIGHT_STATUS", "EDU - NOT FOR FLIGHT"},
	)

	findings := newEngine().Validate(in)
	flight := findByCheck(findings, constants.CheckFlightStatus)
	require.Len(t, flight, 1)
	assert.Equal(t, constants.SeverityCritical, flight[0].Severity)
	assert.Equal(t, "FLIGHT", flight[0].ValuesCompared[constants.DocTraveler])
	assert.Equal(t, "NOT_FOR_FLIGHT", flight[0].ValuesCompared[constants.DocImageSet])
}

func TestValidate_FlightStatusUndetected(t *testing.T) {
	in := matchingTrio(t)
	in.Images = buildSet(t, constants.DocImageSet,
		[2]string{"BOARD_SERIAL", "12345-0001"},
		[2]string{"PART_NUMBER", "PCA-1555-01"},
	)

	findings := newEngine().Validate(in)
	flight := findByCheck(findings, constants.CheckFlightStatus)
	require.Len(t, flight, 1)
	assert.Equal(t, constants.SeverityWarning, flight[0].Severity)
}

// Two job numbers in the traveler: highest confidence wins the comparison and
// the discarded value is reported.
func TestValidate_AmbiguousJobNumber(t *testing.T) {
	in := matchingTrio(t)
	b := facts.NewBuilder(patterns.NewLibrary(), nil)
	in.Traveler = b.Build(constants.DocTraveler, []extract.RawField{
		{Kind: constants.FieldJobNumber, Raw: "54321", Confidence: 0.4},
		{Kind: constants.FieldJobNumber, Raw: "12345", Confidence: 0.9},
		{Kind: constants.FieldPartNumber, Raw: "PCA-1555-01", Confidence: 0.9},
		{Kind: constants.FieldBoardSerial, Raw: "VGN-12345-0001", Confidence: 0.9},
		{Kind: constants.FieldRevision, Raw: "Rev F2", Confidence: 0.9},
		{Kind: constants.FieldFlightStatus, Raw: "FLIGHT", Confidence: 0.9},
	})

	findings := newEngine().Validate(in)

	assert.Empty(t, findByCheck(findings, constants.CheckJobNumber),
		"the high-confidence job number matches the BOM")

	ambiguous := findByCheck(findings, constants.CheckAmbiguousField)
	require.Len(t, ambiguous, 1)
	assert.Equal(t, constants.SeverityWarning, ambiguous[0].Severity)
	assert.Contains(t, ambiguous[0].Message, "54321")
	assert.Equal(t, "12345", ambiguous[0].ValuesCompared[constants.DocTraveler])
}

// Determinism: identical inputs produce identical findings in identical order.
func TestValidate_Deterministic(t *testing.T) {
	e := newEngine()
	in := matchingTrio(t)
	in.BOM = nil

	first := e.Validate(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Validate(in))
	}
}
