// Package naming derives output file names from the applicant label printed
// on each page of the designated input ("申请人：<name>，...").
package naming

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultTerminators are the sex indicators that may follow the name instead
// of a comma on the form template.
const DefaultTerminators = "男女"

// DefaultPatterns returns the pattern list with DefaultTerminators.
func DefaultPatterns() []*regexp.Regexp {
	return NewPatterns(DefaultTerminators)
}

// NewPatterns compiles the applicant patterns, most specific first. The first
// four require an exact marker and a matching comma; the last three tolerate
// spacing inside the marker. terminators is added to the comma as an
// alternative end of the name in patterns five and six.
//
// The order decides which substring is captured on ambiguous text and must
// not change.
func NewPatterns(terminators string) []*regexp.Regexp {
	t := classLiteral(terminators)
	return []*regexp.Regexp{
		regexp.MustCompile(`申请人：([^，]+)，`),
		regexp.MustCompile(`申请人:([^，]+)，`),
		regexp.MustCompile(`申请人：([^,]+),`),
		regexp.MustCompile(`申请人:([^,]+),`),
		regexp.MustCompile(`申\s*请\s*人\s*[:：]\s*([^，,` + t + `]+?)\s*[，,` + t + `]`),
		regexp.MustCompile(`申\s*请\s*人\s*[:：]\s*([^\s，,]+(?:\s+[^\s，,]+)*?)\s*[，,` + t + `]`),
		regexp.MustCompile(`申\s*请\s*人\s*[:：]\s*([^，,\n]+?)\s*[，,]`),
	}
}

// classLiteral escapes runes that are special inside a bracket expression.
func classLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', ']', '[', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExtractLabel returns the capture of the first pattern that matches text,
// with every whitespace rune removed. A capture that is empty after removal
// counts as no match.
func ExtractLabel(text string, patterns []*regexp.Regexp) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	text = foldSpace(text)
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if label := collapse(m[1]); label != "" {
			return label, true
		}
		return "", false
	}
	return "", false
}

// isSpace covers the Unicode whitespace set, including the ideographic space
// and the ASCII separator controls.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// foldSpace turns whitespace that RE2's \s does not know (ideographic space,
// NBSP, vertical tab) into a plain space. Newlines are kept because one
// pattern stops at them.
func foldSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
			return r
		}
		if isSpace(r) {
			return ' '
		}
		return r
	}, s)
}

func collapse(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), "")
}
