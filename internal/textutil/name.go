package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const ellipsis = "..."

// CleanName returns a printable NFC-normalized form of a remote device name.
// Control characters are dropped and surrounding whitespace trimmed.
func CleanName(name string) string {
	normalized := norm.NFC.String(name)
	var sb strings.Builder
	sb.Grow(len(normalized))
	for _, r := range normalized {
		if unicode.IsControl(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

// TruncateName shortens a cleaned name to at most max runes, replacing the
// tail with "..." when it does not fit.
func TruncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	if max <= len(ellipsis) {
		return string(runes[:max])
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}

// SortNames orders device names with a Unicode collator so that names in any
// script list in a stable, human-sensible order.
func SortNames(names []string) {
	collate.New(language.Und).SortStrings(names)
}
