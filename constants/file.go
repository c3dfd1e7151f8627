package constants

import "strings"

// Document formats recorded on extract jobs.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	TXT   = "TXT"
)

// FileTypes holds the allowed values for the format column of extract_jobs.
var FileTypes = []string{PDF, IMAGE, TXT}

// AllowedExtensions holds the default extensions picked up by directory ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"tif":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the document format for ext, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TXT
	case "png", "jpg", "jpeg", "tif", "tiff":
		return IMAGE
	default:
		return ""
	}
}
