package match

import (
	"milex-scraper/internal/taxonomy"
	"milex-scraper/lib/textutil"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

const totalMarker = "5. total"

// SubcategoryOptions tunes the optional rules of NewSubcategoryMatcher.
type SubcategoryOptions struct {
	// SimilarityThreshold enables the Jaro-Winkler rule when > 0, labels
	// scoring at least this much against a subcategory match it.
	SimilarityThreshold float64
}

// NewSubcategoryMatcher resolves row labels to cost categories.
func NewSubcategoryMatcher(tax taxonomy.Taxonomy, opts SubcategoryOptions) Matcher {
	subcategories := tax.Subcategories()
	rules := []Rule{
		Substring(subcategories),
		Totals(subcategories),
		NumericPrefix(subcategories),
	}
	if opts.SimilarityThreshold > 0 {
		rules = append(rules, Similarity(subcategories, opts.SimilarityThreshold))
	}
	return NewMatcher(rules...)
}

// Totals resolves the bare words "total" and "totals" to the aggregate row.
func Totals(names []string) Rule {
	target := ""
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), totalMarker) {
			target = n
			break
		}
	}
	return Rule{
		Name: "totals",
		Match: func(label string) (string, bool) {
			if target == "" {
				return "", false
			}
			if label == "total" || label == "totals" {
				return target, true
			}
			return "", false
		},
	}
}

// numberToken is the leading "1." or "3.1.2" of a numbered name, or "".
func numberToken(name string) string {
	if name == "" || !unicode.IsDigit(rune(name[0])) {
		return ""
	}
	token, _, _ := strings.Cut(name, " ")
	return token
}

// NumericPrefix matches labels that start with the same number token as a
// subcategory, for years where the descriptive text was dropped. "3.1" does
// not claim "3.1.2": the token must not continue with a digit or a period.
func NumericPrefix(names []string) Rule {
	tokens := make([]string, len(names))
	for i, n := range names {
		tokens[i] = strings.ToLower(numberToken(n))
	}
	return Rule{
		Name: "numeric-prefix",
		Match: func(label string) (string, bool) {
			for i, tok := range tokens {
				if tok == "" || !strings.HasPrefix(label, tok) {
					continue
				}
				rest := label[len(tok):]
				if rest != "" && (rest[0] == '.' || unicode.IsDigit(rune(rest[0]))) {
					continue
				}
				return names[i], true
			}
			return "", false
		},
	}
}

func similarityKey(name string) string {
	tok := numberToken(name)
	name = strings.TrimPrefix(name, tok)
	return strings.ToLower(textutil.NormalizeLabel(name))
}

// Similarity picks the most similar subcategory by Jaro-Winkler distance
// over the descriptive part of the label, provided it reaches threshold.
func Similarity(names []string, threshold float64) Rule {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = similarityKey(n)
	}
	return Rule{
		Name: "similarity",
		Match: func(label string) (string, bool) {
			key := similarityKey(label)
			if key == "" {
				return "", false
			}
			best := -1
			bestScore := 0.0
			for i, k := range keys {
				if k == "" {
					continue
				}
				score := matchr.JaroWinkler(key, k, false)
				if score > bestScore {
					best = i
					bestScore = score
				}
			}
			if best < 0 || bestScore < threshold {
				return "", false
			}
			return names[best], true
		},
	}
}
