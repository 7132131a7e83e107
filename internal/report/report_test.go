package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/engine"
)

var (
	testSessionID = uuid.MustParse("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")
	testNow       = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
)

func mismatchFindings() []engine.Finding {
	return []engine.Finding{
		{
			CheckID:   constants.CheckJobNumber,
			Severity:  constants.SeverityCritical,
			FieldKind: constants.FieldJobNumber,
			ValuesCompared: map[constants.DocumentKind]string{
				constants.DocTraveler: "12345",
				constants.DocBOM:      "54321",
			},
			Message: "job number mismatch: traveler has 12345, BOM has 54321",
		},
		{
			CheckID:   constants.CheckRevision,
			Severity:  constants.SeverityWarning,
			FieldKind: constants.FieldRevision,
			ValuesCompared: map[constants.DocumentKind]string{
				constants.DocTraveler: "F2",
				constants.DocBOM:      "F",
			},
			Message: "revision format difference: traveler has F2, BOM has F",
		},
	}
}

func TestAssemble_VerdictIsWorstSeverity(t *testing.T) {
	tests := []struct {
		name     string
		findings []engine.Finding
		want     constants.Verdict
	}{
		{
			name:     "critical wins",
			findings: mismatchFindings(),
			want:     constants.VerdictFail,
		},
		{
			name:     "warnings only",
			findings: mismatchFindings()[1:],
			want:     constants.VerdictWarning,
		},
		{
			name: "pass summary",
			findings: []engine.Finding{{
				CheckID:  constants.CheckSummary,
				Severity: constants.SeverityPass,
				Message:  "all available cross-checks agreed",
			}},
			want: constants.VerdictPass,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Assemble(testSessionID, tt.findings, testNow)
			assert.Equal(t, tt.want, r.OverallVerdict)
			assert.Equal(t, testNow, r.GeneratedAt)
		})
	}
}

func TestAssemble_PanicsOnEngineContractViolation(t *testing.T) {
	assert.Panics(t, func() { Assemble(testSessionID, nil, testNow) })

	mixed := append(mismatchFindings(), engine.Finding{
		CheckID:  constants.CheckSummary,
		Severity: constants.SeverityPass,
		Message:  "all available cross-checks agreed",
	})
	assert.Panics(t, func() { Assemble(testSessionID, mixed, testNow) })
}

func TestMarshal_Golden(t *testing.T) {
	r := Assemble(testSessionID, mismatchFindings(), testNow)

	b, err := Marshal(r)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "validation_report", b)
}

func TestMarshal_Deterministic(t *testing.T) {
	r := Assemble(testSessionID, mismatchFindings(), testNow)

	first, err := Marshal(r)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Marshal(r)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first, again))
	}
}

func TestMarshal_ConformsToSchema(t *testing.T) {
	r := Assemble(testSessionID, mismatchFindings(), testNow)

	b, err := Marshal(r)
	require.NoError(t, err)
	require.NoError(t, ValidateAgainstSchema(BuildReportJSONSchema(), b))
}

func TestValidateAgainstSchema_RejectsUnknownValues(t *testing.T) {
	schema := BuildReportJSONSchema()

	bad := []byte(`{
		"session_id": "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
		"overall_verdict": "MAYBE",
		"findings": [{"check_id": "JOB_NUMBER", "severity": "CRITICAL", "message": "x"}],
		"generated_at": "2026-01-02T03:04:05Z"
	}`)
	assert.Error(t, ValidateAgainstSchema(schema, bad))

	empty := []byte(`{
		"session_id": "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
		"overall_verdict": "PASS",
		"findings": [],
		"generated_at": "2026-01-02T03:04:05Z"
	}`)
	assert.Error(t, ValidateAgainstSchema(schema, empty))
}

func TestExportXLSX(t *testing.T) {
	r := Assemble(testSessionID, mismatchFindings(), testNow)

	b, err := ExportXLSX(r, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	const sheet = "Findings"
	got := func(cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, testSessionID.String(), got("B1"))
	assert.Equal(t, "FAIL", got("B2"))

	// Worst severity sorts first.
	assert.Equal(t, "CRITICAL", got("A6"))
	assert.Equal(t, "JOB_NUMBER", got("B6"))
	assert.Equal(t, "TRAVELER=12345; BOM=54321", got("D6"))
	assert.Equal(t, "WARNING", got("A7"))
	assert.Equal(t, "REVISION", got("B7"))
}
