// Package report turns engine findings into the serialized validation report,
// validates the serialized form against its JSON schema, and renders the XLSX
// export.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/engine"
)

// ValidationReport is the persisted outcome of one analysis run. The field
// order and json tags are a stable contract; consumers diff reports across
// runs.
type ValidationReport struct {
	SessionID      uuid.UUID         `json:"session_id"`
	OverallVerdict constants.Verdict `json:"overall_verdict"`
	Findings       []engine.Finding  `json:"findings"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// Assemble derives the overall verdict from findings and stamps the report.
// The clock is injected so identical findings always serialize identically in
// tests.
//
// Panics when the findings violate the engine contract: the engine always
// emits at least one finding, and the PASS summary exists only alone.
func Assemble(sessionID uuid.UUID, findings []engine.Finding, now time.Time) ValidationReport {
	if len(findings) == 0 {
		panic("report: engine produced no findings")
	}

	worst := constants.SeverityPass
	passSeen := false
	for _, f := range findings {
		if f.Severity == constants.SeverityPass {
			passSeen = true
		}
		if f.Severity.Rank() > worst.Rank() {
			worst = f.Severity
		}
	}
	if passSeen && len(findings) > 1 {
		panic("report: PASS summary mixed with other findings")
	}

	return ValidationReport{
		SessionID:      sessionID,
		OverallVerdict: verdictFor(worst),
		Findings:       findings,
		GeneratedAt:    now.UTC(),
	}
}

func verdictFor(worst constants.Severity) constants.Verdict {
	switch worst {
	case constants.SeverityCritical:
		return constants.VerdictFail
	case constants.SeverityWarning:
		return constants.VerdictWarning
	default:
		return constants.VerdictPass
	}
}

// Marshal is the canonical serialization: indented, with map keys in
// encoding/json's sorted order. Byte-for-byte stable for equal reports.
func Marshal(r ValidationReport) ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return b, nil
}
