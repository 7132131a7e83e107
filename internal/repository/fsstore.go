package repository

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/common"
)

// NamedFile is a document loaded from disk, for CLI runs that bypass the
// database entirely.
type NamedFile struct {
	Name    string
	Content []byte
}

// LoadDirectory classifies every readable file in dir by extension: the PDF is
// the traveler, the spreadsheet is the BOM, images form the image set. More
// than one PDF or spreadsheet is ambiguous and rejected; extra unknown files
// are skipped with a log line.
func LoadDirectory(dir string, logger *slog.Logger) (map[constants.DocumentKind][]NamedFile, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, common.NewAppError("FS_ERROR", "failed to read directory", err)
	}

	out := make(map[constants.DocumentKind][]NamedFile)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		format := constants.MapExtToFormat(filepath.Ext(name))
		var kind constants.DocumentKind
		switch format {
		case constants.FormatPDF:
			kind = constants.DocTraveler
		case constants.FormatExcel:
			kind = constants.DocBOM
		case constants.FormatImage:
			kind = constants.DocImageSet
		default:
			logger.Info("skipping unrecognized file", "file", name)
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, common.NewAppError("FS_ERROR", "failed to read "+name, err)
		}
		out[kind] = append(out[kind], NamedFile{Name: name, Content: content})
	}

	for _, kind := range []constants.DocumentKind{constants.DocTraveler, constants.DocBOM} {
		if len(out[kind]) > 1 {
			return nil, common.NewAppError("INVALID_INPUT",
				"directory holds more than one "+string(kind)+" candidate", common.ErrInvalidInput)
		}
	}
	for kind := range out {
		sort.Slice(out[kind], func(i, j int) bool { return out[kind][i].Name < out[kind][j].Name })
	}
	return out, nil
}
