package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mfg-qc/crosscheck/constants"
)

// BuildReportJSONSchema returns the report schema (draft 2020-12 subset) as a
// generic map. The serialized report is validated against it before being
// persisted, so a contract drift fails loudly instead of corrupting stored
// reports.
func BuildReportJSONSchema() map[string]any {
	var checkIDs, severities, verdicts, fieldKinds, docKinds []any
	for _, c := range []constants.CheckID{
		constants.CheckJobNumber, constants.CheckPartNumber, constants.CheckSerialNumber,
		constants.CheckRevision, constants.CheckFileComplete, constants.CheckFlightStatus,
		constants.CheckAmbiguousField, constants.CheckSummary,
	} {
		checkIDs = append(checkIDs, string(c))
	}
	for _, s := range []constants.Severity{constants.SeverityCritical, constants.SeverityWarning, constants.SeverityPass} {
		severities = append(severities, string(s))
	}
	for _, v := range []constants.Verdict{constants.VerdictFail, constants.VerdictWarning, constants.VerdictPass} {
		verdicts = append(verdicts, string(v))
	}
	for _, k := range constants.FieldKinds {
		fieldKinds = append(fieldKinds, string(k))
	}
	for _, k := range constants.DocumentKinds {
		docKinds = append(docKinds, string(k))
	}

	finding := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"check_id":   map[string]any{"type": "string", "enum": checkIDs},
			"severity":   map[string]any{"type": "string", "enum": severities},
			"field_kind": map[string]any{"type": "string", "enum": fieldKinds},
			"values_compared": map[string]any{
				"type":          "object",
				"propertyNames": map[string]any{"enum": docKinds},
				"additionalProperties": map[string]any{
					"type": "string", "minLength": 1,
				},
			},
			"message": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []any{"check_id", "severity", "message"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"session_id":      map[string]any{"type": "string", "format": "uuid"},
			"overall_verdict": map[string]any{"type": "string", "enum": verdicts},
			"findings": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    finding,
			},
			"generated_at": map[string]any{"type": "string", "format": "date-time"},
		},
		"required": []any{"session_id", "overall_verdict", "findings", "generated_at"},
	}
}

// ValidateAgainstSchema validates serialized report bytes against schemaMap.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("report.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("report.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}
