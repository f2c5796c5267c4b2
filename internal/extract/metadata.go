package extract

import (
	"milex-scraper/lib/htmlutil"
	"milex-scraper/lib/textutil"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"
)

// nilReportMinLength excludes placeholder text from the nil report narrative.
const nilReportMinLength = 20

// Scalar is a text attribute reported next to the table.
type Scalar struct {
	// Term is the exact <dt> text of the definition list layout.
	Term string
	// Label is looked for, case-insensitively, in the label paragraph of
	// the currency-and-unit layout.
	Label string
}

var (
	NationalCurrency   = Scalar{Term: "National Currency", Label: "national currency"}
	UnitOfMeasure      = Scalar{Term: "Unit of Measure", Label: "unit of measure"}
	ExplanatoryRemarks = Scalar{Term: "Explanatory Remarks", Label: "explanatory remarks"}
)

// Layout is one way a report page may lay out its scalar attributes.
type Layout interface {
	Name() string
	Lookup(doc *goquery.Document, s Scalar) (string, bool)
}

// DefinitionList reads <dt>label</dt><dd>value</dd> pairs.
type DefinitionList struct{}

func (DefinitionList) Name() string { return "definition-list" }

func (DefinitionList) Lookup(doc *goquery.Document, s Scalar) (string, bool) {
	term := doc.Find("dt").FilterFunction(func(_ int, dt *goquery.Selection) bool {
		return htmlutil.SelectionText(dt) == s.Term
	}).First()
	if term.Length() == 0 {
		return "", false
	}
	dd := term.NextAllFiltered("dd").First()
	if dd.Length() == 0 {
		return "", false
	}
	value := htmlutil.SelectionText(dd)
	return value, value != ""
}

// ParagraphPair reads label/value paragraph pairs inside
// div.currency-and-unit, where the value may start with a colon.
type ParagraphPair struct{}

func (ParagraphPair) Name() string { return "paragraph-pair" }

func (ParagraphPair) Lookup(doc *goquery.Document, s Scalar) (string, bool) {
	value := ""
	found := false
	doc.Find("div.currency-and-unit").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		ps := div.Find("p")
		if ps.Length() < 2 {
			return true
		}
		label := strings.ToLower(htmlutil.SelectionText(ps.Eq(0)))
		if !strings.Contains(label, s.Label) {
			return true
		}
		value = strings.TrimSpace(strings.TrimLeft(htmlutil.SelectionText(ps.Eq(1)), ":"))
		found = true
		return false
	})
	return value, found && value != ""
}

// DefaultLayouts are tried in order, the first non-empty value wins.
var DefaultLayouts = []Layout{DefinitionList{}, ParagraphPair{}}

func lookupScalar(doc *goquery.Document, layouts []Layout, s Scalar) *string {
	for _, l := range layouts {
		value, ok := l.Lookup(doc, s)
		if ok {
			return &value
		}
	}
	return nil
}

// totalExpenditure reads the number in the first <h1> after the
// "Total expenditure" <h3>.
func totalExpenditure(doc *goquery.Document) *float64 {
	heading := doc.Find("h3").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(htmlutil.SelectionText(h)), "total expenditure")
	}).First()
	if heading.Length() == 0 {
		return nil
	}
	next := htmlutil.FindNext(heading.Get(0), atom.H1)
	if next == nil {
		return nil
	}
	value, ok := textutil.ParseNumber(htmlutil.CleanText(next))
	if !ok {
		return nil
	}
	return &value
}

// nilReport is the narrative of a report that has no table, taken from the
// first paragraph of the loaded report container.
func nilReport(doc *goquery.Document) *string {
	report := doc.Find("div").FilterFunction(func(_ int, div *goquery.Selection) bool {
		return htmlutil.HasClasses(div.Get(0), "report", "loaded")
	}).First()
	if report.Length() == 0 {
		return nil
	}
	p := report.Find("p").First()
	if p.Length() == 0 {
		return nil
	}
	text := htmlutil.SelectionText(p)
	if utf8.RuneCountInString(text) <= nilReportMinLength {
		return nil
	}
	return &text
}
