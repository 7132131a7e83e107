// Package facts canonicalizes raw extracted fields and aggregates them into
// one immutable fact set per source document.
package facts

import (
	"sort"

	"github.com/mfg-qc/crosscheck/constants"
)

// NormalizedField is a raw field that survived canonicalization.
type NormalizedField struct {
	Kind       constants.FieldKind
	Canonical  string
	Raw        string
	Confidence float32
}

// FactSet is the complete normalized field collection extracted from one
// document. Built once per document per analysis run; immutable once built.
type FactSet struct {
	documentKind constants.DocumentKind
	fields       map[constants.FieldKind][]NormalizedField
}

// Empty returns a fact set with no fields, used when a document is missing or
// failed extraction so downstream checks read absence instead of being
// skipped.
func Empty(kind constants.DocumentKind) *FactSet {
	return &FactSet{documentKind: kind, fields: map[constants.FieldKind][]NormalizedField{}}
}

func (fs *FactSet) DocumentKind() constants.DocumentKind { return fs.documentKind }

// Values returns the ordered fields of one kind.
func (fs *FactSet) Values(kind constants.FieldKind) []NormalizedField {
	return fs.fields[kind]
}

// Canonicals returns the ordered canonical values of one kind.
func (fs *FactSet) Canonicals(kind constants.FieldKind) []string {
	vs := fs.fields[kind]
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Canonical
	}
	return out
}

// Best returns the preferred value for a kind expected to be singular:
// highest confidence, first-seen on ties. ok=false when the kind is absent.
func (fs *FactSet) Best(kind constants.FieldKind) (NormalizedField, bool) {
	vs := fs.fields[kind]
	if len(vs) == 0 {
		return NormalizedField{}, false
	}
	return vs[0], true
}

// Alternatives returns every value of a singular kind beyond the best one.
func (fs *FactSet) Alternatives(kind constants.FieldKind) []NormalizedField {
	vs := fs.fields[kind]
	if len(vs) <= 1 {
		return nil
	}
	return vs[1:]
}

// Has reports whether a canonical value is present for the kind.
func (fs *FactSet) Has(kind constants.FieldKind, canonical string) bool {
	for _, v := range fs.fields[kind] {
		if v.Canonical == canonical {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no field of any kind survived.
func (fs *FactSet) IsEmpty() bool {
	for _, vs := range fs.fields {
		if len(vs) > 0 {
			return false
		}
	}
	return true
}

// sortSingular stable-sorts a singular kind's values by descending
// confidence, preserving extraction order within equal confidence.
func sortSingular(vs []NormalizedField) {
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].Confidence > vs[j].Confidence
	})
}
