package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfg-qc/crosscheck/constants"
)

func matchValues(lib *Library, kind constants.FieldKind, text string) []string {
	var out []string
	for _, m := range lib.Match(kind, text) {
		out = append(out, m.Raw)
	}
	return out
}

func TestMatch_BoardSerial(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"prefixed", "board VGN-12345-0001 installed", []string{"VGN-12345-0001"}},
		{"bare", "serial 12345-0001 visible", []string{"12345-0001"}},
		{"underscored", "VGN_12345_0001", []string{"VGN_12345_0001"}},
		{"wrong digit count", "1234-001", nil},
		{"multiple", "VGN-11111-0001 and 22222-0002", []string{"VGN-11111-0001", "22222-0002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchValues(lib, constants.FieldBoardSerial, tt.text))
		})
	}
}

func TestMatch_UnitSerialRequiresPrefix(t *testing.T) {
	lib := NewLibrary()

	assert.Equal(t, []string{"INF-123"}, matchValues(lib, constants.FieldUnitSerial, "unit INF-123"))
	assert.Equal(t, []string{"INF0042"}, matchValues(lib, constants.FieldUnitSerial, "S/N INF0042"))
	// bare digits are not recognized in free text, only canonicalized
	assert.Empty(t, matchValues(lib, constants.FieldUnitSerial, "unit 123"))
}

func TestMatch_PartNumber(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"hyphenated", "part PCA-1555-01", []string{"PCA-1555-01"}},
		{"missing hyphen", "PCA1555-01", []string{"PCA1555-01"}},
		{"drawing", "per DRW-2200-03", []string{"DRW-2200-03"}},
		{"wrong prefix", "ABC-1234-01", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchValues(lib, constants.FieldPartNumber, tt.text))
		})
	}
}

func TestMatch_JobNumber(t *testing.T) {
	lib := NewLibrary()

	t.Run("job adjacent preferred", func(t *testing.T) {
		got := matchValues(lib, constants.FieldJobNumber, "Lot 99999 ... Job: 12345")
		require.NotEmpty(t, got)
		assert.Equal(t, "12345", got[0], "Job-adjacent digits must come first")
	})
	t.Run("standalone", func(t *testing.T) {
		assert.Equal(t, []string{"54321"}, matchValues(lib, constants.FieldJobNumber, "WO 54321 released"))
	})
	t.Run("serial fragment is not a job", func(t *testing.T) {
		assert.Empty(t, matchValues(lib, constants.FieldJobNumber, "VGN-12345-0001"))
	})
	t.Run("six digits is not a job", func(t *testing.T) {
		assert.Empty(t, matchValues(lib, constants.FieldJobNumber, "ref 123456"))
	})
	t.Run("adjacent runs", func(t *testing.T) {
		assert.Equal(t, []string{"12345", "67890"}, matchValues(lib, constants.FieldJobNumber, "12345 67890"))
	})
}

func TestMatch_Revision(t *testing.T) {
	lib := NewLibrary()

	assert.Equal(t, []string{"F2"}, matchValues(lib, constants.FieldRevision, "built to Rev F2"))
	assert.Equal(t, []string{"A"}, matchValues(lib, constants.FieldRevision, "REV A"))
	assert.Empty(t, matchValues(lib, constants.FieldRevision, "no revision here"))
}

func TestDecideFlightStatus(t *testing.T) {
	lib := NewLibrary()

	t.Run("edu overrides bare flight", func(t *testing.T) {
		m, ok := lib.DecideFlightStatus("FLIGHT hardware ... EDU - NOT FOR FLIGHT")
		require.True(t, ok)
		canon, ok := lib.Normalize(constants.FieldFlightStatus, m.Raw)
		require.True(t, ok)
		assert.Equal(t, FlightStatusNotForFlight, canon)
	})
	t.Run("bare flight", func(t *testing.T) {
		m, ok := lib.DecideFlightStatus("FLIGHT unit")
		require.True(t, ok)
		canon, _ := lib.Normalize(constants.FieldFlightStatus, m.Raw)
		assert.Equal(t, FlightStatusFlight, canon)
	})
	t.Run("no marking", func(t *testing.T) {
		_, ok := lib.DecideFlightStatus("nothing relevant")
		assert.False(t, ok)
	})
}

func TestNormalize(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		kind constants.FieldKind
		raw  string
		want string
		ok   bool
	}{
		{constants.FieldBoardSerial, "12345-0001", "VGN-12345-0001", true},
		{constants.FieldBoardSerial, "vgn_12345_0001", "VGN-12345-0001", true},
		{constants.FieldBoardSerial, "1234-001", "", false},
		{constants.FieldUnitSerial, "123", "INF-123", true},
		{constants.FieldUnitSerial, "INF0042", "INF-0042", true},
		{constants.FieldUnitSerial, "123456", "", false},
		{constants.FieldPartNumber, "PCA1555-01", "PCA-1555-01", true},
		{constants.FieldPartNumber, "drw_2200_03", "DRW-2200-03", true},
		{constants.FieldPartNumber, "PCA-155-01", "", false},
		{constants.FieldJobNumber, "Job 12345", "12345", true},
		{constants.FieldJobNumber, "12345", "12345", true},
		{constants.FieldJobNumber, "1234", "", false},
		{constants.FieldRevision, "Rev F2", "F2", true},
		{constants.FieldRevision, "rev. a", "A", true},
		{constants.FieldRevision, "2F", "", false},
		{constants.FieldFlightStatus, "EDU - NOT FOR FLIGHT", FlightStatusNotForFlight, true},
		{constants.FieldFlightStatus, "flight", FlightStatusFlight, true},
		{constants.FieldFlightStatus, "grounded", "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.raw, func(t *testing.T) {
			got, ok := lib.Normalize(tt.kind, tt.raw)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// normalize(normalize(x)) == normalize(x) for every accepted value.
func TestNormalize_Idempotent(t *testing.T) {
	lib := NewLibrary()

	samples := map[constants.FieldKind][]string{
		constants.FieldBoardSerial:  {"12345-0001", "VGN_11111_2222"},
		constants.FieldUnitSerial:   {"7", "INF-12345", "0042"},
		constants.FieldPartNumber:   {"PCA1555-01", "DRW-2200-03"},
		constants.FieldJobNumber:    {"Job: 12345", "54321"},
		constants.FieldRevision:     {"Rev F2", "A"},
		constants.FieldFlightStatus: {"EDU - NOT FOR FLIGHT", "FLIGHT"},
	}
	for kind, raws := range samples {
		for _, raw := range raws {
			canon, ok := lib.Normalize(kind, raw)
			require.True(t, ok, "%s %q", kind, raw)
			again, ok := lib.Normalize(kind, canon)
			require.True(t, ok, "%s canonical %q rejected", kind, canon)
			assert.Equal(t, canon, again, "%s %q not idempotent", kind, raw)
		}
	}
}

// Canonical values always re-match their own family's matcher.
func TestNormalize_RoundTrip(t *testing.T) {
	lib := NewLibrary()

	canonical := map[constants.FieldKind][]string{
		constants.FieldBoardSerial:  {"VGN-12345-0001"},
		constants.FieldUnitSerial:   {"INF-123", "INF-12345"},
		constants.FieldPartNumber:   {"PCA-1555-01", "DRW-2200-03"},
		constants.FieldJobNumber:    {"12345"},
		constants.FieldRevision:     {"F2", "A"},
		constants.FieldFlightStatus: {FlightStatusFlight, FlightStatusNotForFlight},
	}
	for kind, values := range canonical {
		for _, v := range values {
			assert.NotEmpty(t, lib.Match(kind, v), "%s canonical %q does not re-match", kind, v)
		}
	}
}

func TestNewLibraryWithOverrides(t *testing.T) {
	ov := Overrides{Patterns: map[string][]string{
		"JOB_NUMBER": {`\bJN(\d{5})\b`},
	}}
	lib, err := NewLibraryWithOverrides(ov)
	require.NoError(t, err)

	assert.Equal(t, []string{"12345"}, matchValues(lib, constants.FieldJobNumber, "JN12345"))
	assert.Empty(t, matchValues(lib, constants.FieldJobNumber, "Job 12345"))
	// untouched families keep their defaults
	assert.Equal(t, []string{"PCA-1555-01"}, matchValues(lib, constants.FieldPartNumber, "PCA-1555-01"))
}

func TestNewLibraryWithOverrides_Invalid(t *testing.T) {
	_, err := NewLibraryWithOverrides(Overrides{Patterns: map[string][]string{"NOPE": {`x`}}})
	assert.Error(t, err)

	_, err = NewLibraryWithOverrides(Overrides{Patterns: map[string][]string{"REVISION": {`(`}}})
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	in := "Job:\t12345\r\nSerial  VGN-12345-0001 ***\r\n\r\n\r\nRev F2"
	got := CleanText(in)
	assert.Equal(t, "Job: 12345\nSerial VGN-12345-0001\n\nRev F2", got)
}
