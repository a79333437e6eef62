package naming

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FallbackFilename is the positional name for output index (0-based).
func FallbackFilename(index int) string {
	return fmt.Sprintf("page-%d-merged.pdf", index+1)
}

// Filename returns "<label>.pdf" for output index when names holds a usable
// label for it, otherwise FallbackFilename(index).
func Filename(names []Name, index int) string {
	if index >= 0 && index < len(names) {
		if base := sanitize(names[index].Label); base != "" {
			return base + ".pdf"
		}
	}
	return FallbackFilename(index)
}

// sanitize NFC-normalizes the label and replaces characters that are not
// allowed in file names on common file systems.
func sanitize(label string) string {
	label = norm.NFC.String(strings.TrimSpace(label))
	label = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, label)
	label = strings.Trim(label, ". ")
	if strings.Trim(label, "_") == "" {
		return ""
	}
	return label
}

// Duplicates maps each filename produced for more than one index to those
// indexes, in order.
func Duplicates(names []Name, outputs int) map[string][]int {
	seen := make(map[string][]int)
	for i := 0; i < outputs; i++ {
		f := Filename(names, i)
		seen[f] = append(seen[f], i)
	}
	for f, idx := range seen {
		if len(idx) < 2 {
			delete(seen, f)
		}
	}
	return seen
}
