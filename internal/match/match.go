// Package match resolves free-text table labels onto taxonomy entries with
// ordered lists of matching rules.
package match

import (
	"milex-scraper/lib/textutil"
	"strings"
)

// Rule resolves a label to a canonical name. Labels handed to a rule are
// already lowercased, whitespace-collapsed and never empty.
type Rule struct {
	Name  string
	Match func(label string) (string, bool)
}

// Matcher evaluates its rules in order, the first rule to match wins.
type Matcher struct {
	rules []Rule
}

func NewMatcher(rules ...Rule) Matcher {
	return Matcher{rules: rules}
}

// Match returns the canonical name for a label, ok is false when no rule
// matched or the label is blank.
func (m Matcher) Match(label string) (string, bool) {
	name, _, ok := m.Explain(label)
	return name, ok
}

// Explain is Match that also names the rule that matched.
func (m Matcher) Explain(label string) (name, rule string, ok bool) {
	label = strings.ToLower(textutil.CollapseSpace(label))
	if label == "" {
		return "", "", false
	}
	for _, r := range m.rules {
		name, ok := r.Match(label)
		if ok {
			return name, r.Name, true
		}
	}
	return "", "", false
}

// Substring matches when a name contains the label or the label contains a
// name, ignoring case. Earlier names win.
func Substring(names []string) Rule {
	lowered := lowerAll(names)
	return Rule{
		Name: "substring",
		Match: func(label string) (string, bool) {
			for i, n := range lowered {
				if strings.Contains(label, n) || strings.Contains(n, label) {
					return names[i], true
				}
			}
			return "", false
		},
	}
}

// Alias maps a keyword found anywhere in a label to a canonical name.
type Alias struct {
	Keyword string
	Name    string
}

// Aliases matches on the first alias whose keyword the label contains.
// Aliases pointing outside `names` are dropped.
func Aliases(aliases []Alias, names []string) Rule {
	valid := make(map[string]struct{}, len(names))
	for _, n := range names {
		valid[n] = struct{}{}
	}
	var kept []Alias
	for _, a := range aliases {
		if _, ok := valid[a.Name]; ok {
			kept = append(kept, Alias{Keyword: strings.ToLower(a.Keyword), Name: a.Name})
		}
	}
	return Rule{
		Name: "alias",
		Match: func(label string) (string, bool) {
			for _, a := range kept {
				if strings.Contains(label, a.Keyword) {
					return a.Name, true
				}
			}
			return "", false
		},
	}
}

func lowerAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToLower(n)
	}
	return out
}
