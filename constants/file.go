package constants

import "strings"

// FileFormat is the physical format of an uploaded file.
type FileFormat string

const (
	FormatPDF     FileFormat = "PDF"
	FormatExcel   FileFormat = "EXCEL"
	FormatImage   FileFormat = "IMAGE"
	FormatUnknown FileFormat = "UNKNOWN"
)

// AllowedExtensions holds the accepted file extensions per format.
var AllowedExtensions = map[string]FileFormat{
	"pdf":  FormatPDF,
	"xlsx": FormatExcel,
	"xlsm": FormatExcel,
	"jpg":  FormatImage,
	"jpeg": FormatImage,
	"png":  FormatImage,
	"tif":  FormatImage,
	"tiff": FormatImage,
	"bmp":  FormatImage,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat resolves a (normalized or raw) extension to a FileFormat.
func MapExtToFormat(ext string) FileFormat {
	if f, ok := AllowedExtensions[NormalizeExt(ext)]; ok {
		return f
	}
	return FormatUnknown
}

// FormatForKind returns the format each document kind is expected to arrive in.
func FormatForKind(kind DocumentKind) FileFormat {
	switch kind {
	case DocTraveler:
		return FormatPDF
	case DocBOM:
		return FormatExcel
	case DocImageSet:
		return FormatImage
	default:
		return FormatUnknown
	}
}
