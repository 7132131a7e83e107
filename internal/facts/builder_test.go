package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/extract"
	"github.com/mfg-qc/crosscheck/internal/patterns"
)

func raw(kind constants.FieldKind, raw string, conf float32) extract.RawField {
	return extract.RawField{
		Kind:         kind,
		Raw:          raw,
		DocumentKind: constants.DocTraveler,
		Confidence:   conf,
	}
}

func TestBuild_NormalizesAndCollapsesDuplicates(t *testing.T) {
	b := NewBuilder(patterns.NewLibrary(), nil)

	fs := b.Build(constants.DocTraveler, []extract.RawField{
		raw(constants.FieldBoardSerial, "12345-0001", 0.7),
		raw(constants.FieldBoardSerial, "VGN-12345-0001", 0.9), // same canonical value
		raw(constants.FieldBoardSerial, "VGN-22222-0002", 0.8),
		raw(constants.FieldPartNumber, "PCA1555-01", 1.0),
		raw(constants.FieldPartNumber, "not-a-part", 1.0), // rejected
	})

	serials := fs.Values(constants.FieldBoardSerial)
	require.Len(t, serials, 2)
	assert.Equal(t, "VGN-12345-0001", serials[0].Canonical)
	assert.InDelta(t, 0.9, serials[0].Confidence, 1e-6, "duplicate keeps the best confidence")
	assert.Equal(t, "VGN-22222-0002", serials[1].Canonical)

	assert.Equal(t, []string{"PCA-1555-01"}, fs.Canonicals(constants.FieldPartNumber))
}

func TestBuild_SingularKindsOrderedByConfidence(t *testing.T) {
	b := NewBuilder(patterns.NewLibrary(), nil)

	fs := b.Build(constants.DocTraveler, []extract.RawField{
		raw(constants.FieldJobNumber, "11111", 0.5),
		raw(constants.FieldJobNumber, "22222", 0.9),
	})

	best, ok := fs.Best(constants.FieldJobNumber)
	require.True(t, ok)
	assert.Equal(t, "22222", best.Canonical)

	alts := fs.Alternatives(constants.FieldJobNumber)
	require.Len(t, alts, 1)
	assert.Equal(t, "11111", alts[0].Canonical)
}

func TestBuild_MultiValuedKeepsExtractionOrder(t *testing.T) {
	b := NewBuilder(patterns.NewLibrary(), nil)

	fs := b.Build(constants.DocBOM, []extract.RawField{
		raw(constants.FieldPartNumber, "PCA-1555-01", 0.5),
		raw(constants.FieldPartNumber, "DRW-2200-03", 0.9),
	})

	// parts are an ordered set, not confidence-sorted
	assert.Equal(t, []string{"PCA-1555-01", "DRW-2200-03"}, fs.Canonicals(constants.FieldPartNumber))
}

func TestFactSet_Accessors(t *testing.T) {
	b := NewBuilder(patterns.NewLibrary(), nil)

	fs := b.Build(constants.DocImageSet, []extract.RawField{
		raw(constants.FieldUnitSerial, "INF-42", 0.8),
	})
	assert.True(t, fs.Has(constants.FieldUnitSerial, "INF-42"))
	assert.False(t, fs.Has(constants.FieldUnitSerial, "INF-43"))
	assert.False(t, fs.IsEmpty())

	empty := Empty(constants.DocBOM)
	assert.True(t, empty.IsEmpty())
	_, ok := empty.Best(constants.FieldJobNumber)
	assert.False(t, ok)
	assert.Equal(t, constants.DocBOM, empty.DocumentKind())
}
