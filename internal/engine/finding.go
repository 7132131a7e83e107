// Package engine compares normalized fact sets across the traveler, BOM, and
// image set, and emits typed findings in a fixed check order. It is a pure
// function of its inputs: no I/O, no clock, no randomness.
package engine

import (
	"github.com/mfg-qc/crosscheck/constants"
)

// Finding is one reported outcome of a single cross-validation check.
// Immutable.
type Finding struct {
	CheckID  constants.CheckID  `json:"check_id"`
	Severity constants.Severity `json:"severity"`
	// FieldKind is the identifier family the check compared; empty for
	// checks that are not about one family (file completeness, summary).
	FieldKind constants.FieldKind `json:"field_kind,omitempty"`
	// ValuesCompared maps source document kind to the canonical value
	// actually compared. A kind with no usable value is absent from the map.
	ValuesCompared map[constants.DocumentKind]string `json:"values_compared,omitempty"`
	Message        string                            `json:"message"`
}

func critical(check constants.CheckID, kind constants.FieldKind, values map[constants.DocumentKind]string, msg string) Finding {
	return Finding{CheckID: check, Severity: constants.SeverityCritical, FieldKind: kind, ValuesCompared: values, Message: msg}
}

func warning(check constants.CheckID, kind constants.FieldKind, values map[constants.DocumentKind]string, msg string) Finding {
	return Finding{CheckID: check, Severity: constants.SeverityWarning, FieldKind: kind, ValuesCompared: values, Message: msg}
}
