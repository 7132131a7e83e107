package facts

import (
	"log/slog"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/extract"
	"github.com/mfg-qc/crosscheck/internal/patterns"
)

// Builder runs the normalizer over raw fields and assembles fact sets.
type Builder struct {
	lib    *patterns.Library
	logger *slog.Logger
}

func NewBuilder(lib *patterns.Library, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{lib: lib, logger: logger}
}

// Normalize canonicalizes one raw field. ok=false means the value does not
// conform to its family format; rejection is data absence, not an error.
func (b *Builder) Normalize(f extract.RawField) (NormalizedField, bool) {
	canonical, ok := b.lib.Normalize(f.Kind, f.Raw)
	if !ok {
		b.logger.Debug("normalization rejected field",
			"kind", f.Kind, "raw", f.Raw, "document", f.DocumentKind, "location", f.Location)
		return NormalizedField{}, false
	}
	return NormalizedField{
		Kind:       f.Kind,
		Canonical:  canonical,
		Raw:        f.Raw,
		Confidence: f.Confidence,
	}, true
}

// Build aggregates one document's raw fields into a fact set: rejected values
// are dropped, duplicate canonical values collapse into the first occurrence
// (keeping the highest confidence seen), and singular kinds are ordered by
// descending confidence.
func (b *Builder) Build(docKind constants.DocumentKind, raws []extract.RawField) *FactSet {
	fields := make(map[constants.FieldKind][]NormalizedField)
	index := make(map[string]int) // kind+canonical -> position in fields[kind]

	for _, raw := range raws {
		nf, ok := b.Normalize(raw)
		if !ok {
			continue
		}
		key := string(nf.Kind) + "\x00" + nf.Canonical
		if pos, dup := index[key]; dup {
			if nf.Confidence > fields[nf.Kind][pos].Confidence {
				fields[nf.Kind][pos].Confidence = nf.Confidence
			}
			continue
		}
		index[key] = len(fields[nf.Kind])
		fields[nf.Kind] = append(fields[nf.Kind], nf)
	}

	for kind, vs := range fields {
		if constants.SingularFieldKinds[kind] {
			sortSingular(vs)
		}
	}

	return &FactSet{documentKind: docKind, fields: fields}
}
