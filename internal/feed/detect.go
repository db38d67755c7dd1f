package feed

import "strings"

type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Detect classifies content by content-type hint first, then by sniffing the
// leading character. Total: always returns one of the three formats.
func Detect(contentType, content string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "xml"):
		return FormatXML
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "csv"):
		return FormatCSV
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return FormatCSV
	}
	switch trimmed[0] {
	case '<':
		return FormatXML
	case '{', '[':
		return FormatJSON
	default:
		return FormatCSV
	}
}
