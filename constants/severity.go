package constants

// Severity classifies a single finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL" // blocks ship
	SeverityWarning  Severity = "WARNING"  // needs review
	SeverityPass     Severity = "PASS"     // no issue
)

// Rank orders severities for verdict computation (higher is worse).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Verdict is the overall outcome of an analysis run.
type Verdict string

const (
	VerdictFail    Verdict = "FAIL"
	VerdictWarning Verdict = "WARNING"
	VerdictPass    Verdict = "PASS"
)

// CheckID identifies one cross-validation check. Values are stable: they are
// part of the serialized report contract.
type CheckID string

const (
	CheckJobNumber      CheckID = "JOB_NUMBER"
	CheckPartNumber     CheckID = "PART_NUMBER"
	CheckSerialNumber   CheckID = "SERIAL_NUMBER"
	CheckRevision       CheckID = "REVISION"
	CheckFileComplete   CheckID = "FILE_COMPLETENESS"
	CheckFlightStatus   CheckID = "FLIGHT_STATUS"
	CheckAmbiguousField CheckID = "AMBIGUOUS_FIELD"
	CheckSummary        CheckID = "SUMMARY"
)
