package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseSpace turns every whitespace run into one space and trims the ends.
func CollapseSpace(text string) string {
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeLabel produces an identifier-like form of free text:
// "  Cost  category " becomes "Cost_category".
func NormalizeLabel(text string) string {
	text = CollapseSpace(text)
	text = strings.ReplaceAll(text, " ", "_")

	var out strings.Builder
	for _, c := range text {
		if c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}

// ContainsAny reports whether the lowercased text contains one of the
// needles, which are expected to already be lowercase.
func ContainsAny(text string, needles []string) bool {
	text = strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// ParseNumber reads a number written with thousands separators, "1,234.5"
// gives 1234.5. ok is false for anything that is not a plain decimal literal.
func ParseNumber(text string) (value float64, ok bool) {
	text = strings.ReplaceAll(text, ",", "")
	text = whitespaceRegex.ReplaceAllString(text, "")
	if !decimalLiteral.MatchString(text) {
		return 0, false
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
