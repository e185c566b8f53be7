package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

// e.g. "Purchase Order 4500123.pdf"
var poFilenamePattern = regexp.MustCompile(`^\S+\s+\S+\s+(\S+)$`)

// PONumberFromFilename derives the PO number from a "<word> <word> <poNumber>" file name
func PONumberFromFilename(name string) (string, bool) {
	base := filepath.Base(strings.TrimSpace(name))
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".pdf") {
		base = strings.TrimSuffix(base, ext)
	}
	m := poFilenamePattern.FindStringSubmatch(strings.TrimSpace(base))
	if m == nil {
		return "", false
	}
	return m[1], true
}
