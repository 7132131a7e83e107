package constants

// RunStatus is the canonical status for rows in analysis_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusQueued     RunStatus = "QUEUED"
	RunStatusExtracting RunStatus = "EXTRACTING" // document extraction in progress
	RunStatusValidating RunStatus = "VALIDATING" // cross-validation in progress
	RunStatusCompleted  RunStatus = "COMPLETED"  // report produced
	RunStatusFailed     RunStatus = "FAILED"     // terminal failure
)
