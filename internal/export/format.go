// Package export turns a session's raw turn sequence into its output
// variants: plain reflowed text, Markdown, or the raw structured record.
package export

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Format selects an export output variant.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatRecord   Format = "json"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrDestinationExists = errors.New("destination already exists")
)

// ParseFormat maps an explicitly requested output kind onto the closed
// Format set. Unknown kinds are refused.
func ParseFormat(kind string) (Format, error) {
	switch Format(strings.ToLower(kind)) {
	case FormatText, FormatMarkdown, FormatRecord:
		return Format(strings.ToLower(kind)), nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%q", kind)
}

// FormatForPath selects the output variant from the destination's extension.
// Unrecognized or missing extensions default to plain text.
func FormatForPath(path string) Format {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format, err := ParseFormat(ext); err == nil {
		return format
	}
	return FormatText
}
