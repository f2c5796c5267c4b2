package extract

import (
	"encoding/json"
	"milex-scraper/internal/match"
	"milex-scraper/internal/milex"
	"milex-scraper/internal/taxonomy"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string     { return &s }
func floatp(f float64) *float64 { return &f }

func newTestExtractor(t *testing.T) Extractor {
	t.Helper()
	tax, err := taxonomy.Default()
	require.NoError(t, err)
	return NewExtractor(tax, Options{})
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	contents, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(contents)
}

func extractHTML(t *testing.T, e Extractor, html string) milex.Record {
	t.Helper()
	record, err := e.Extract(Page{
		Country: "LTU",
		Year:    2024,
		URL:     "https://milex-reporting.unoda.org/en/states/LTU/2024",
		HTML:    html,
	})
	require.NoError(t, err)
	return record
}

func TestMinimalTable(t *testing.T) {
	e := newTestExtractor(t)
	record := extractHTML(t, e, `<table>
		<tr><td></td><td>Land forces</td></tr>
		<tr><td>1. Personnel</td><td>42,000</td></tr>
	</table>`)

	require.Equal(t, map[string]float64{"Land forces - 1. Personnel": 42000}, record.FieldData)
	require.Nil(t, record.TotalExpenditureAll)
	require.Equal(t, "LTU", record.Country)
	require.Equal(t, 2024, record.Year)
	require.Equal(t, milex.StatusSuccess, milex.Classify(record))
}

func TestNoQualifyingTable(t *testing.T) {
	e := newTestExtractor(t)

	record := extractHTML(t, e, `<table>
		<tr><td>Country</td><td>Year</td></tr>
		<tr><td>1. Personnel</td><td>1</td></tr>
	</table>`)
	require.Empty(t, record.FieldData)
	require.NotNil(t, record.FieldData)
	require.Nil(t, record.TotalExpenditureAll)
	require.Equal(t, milex.StatusNoData, milex.Classify(record))

	record = extractHTML(t, e, `<h3>Total Expenditure</h3><h1>12.5</h1><p>nothing else</p>`)
	require.Empty(t, record.FieldData)
	require.Equal(t, floatp(12.5), record.TotalExpenditureAll)
	require.Equal(t, milex.StatusSuccess, milex.Classify(record))
}

func TestTableSkipRules(t *testing.T) {
	e := newTestExtractor(t)

	table := []struct {
		name string
		html string
	}{
		{
			name: "single row",
			html: `<table><tr><td></td><td>Land forces</td></tr></table>`,
		},
		{
			name: "header on third row",
			html: `<table>
				<tr><td>a</td></tr><tr><td>b</td></tr>
				<tr><td></td><td>Land forces</td></tr>
				<tr><td>1. Personnel</td><td>1</td></tr>
			</table>`,
		},
		{
			name: "indicator only in unmatched columns",
			html: `<table>
				<tr><td>Land forces</td><td>Notes</td><td>Remarks</td></tr>
				<tr><td>1. Personnel</td><td>1</td><td>2</td></tr>
			</table>`,
		},
		{
			name: "unmatched row labels",
			html: `<table>
				<tr><td></td><td>Land forces</td></tr>
				<tr><td>Footnote</td><td>1</td></tr>
				<tr><td></td><td>2</td></tr>
				<tr><td>Force groups</td><td>3</td></tr>
			</table>`,
		},
	}
	for _, row := range table {
		record := extractHTML(t, e, row.html)
		require.Empty(t, record.FieldData, row.name)
	}
}

func TestColumnsBeyondHeaderDropped(t *testing.T) {
	e := newTestExtractor(t)
	record := extractHTML(t, e, `<table>
		<tr><th></th><th>Naval forces</th><th>Comments</th></tr>
		<tr><td>1.3 Civilian personnel</td><td>7</td><td>8</td><td>9</td></tr>
	</table>`)

	require.Equal(t, map[string]float64{"Naval forces - 1.3 Civilian personnel": 7}, record.FieldData)
}

func TestTaxonomyBoundsOutput(t *testing.T) {
	tax, err := taxonomy.New(
		[]string{"Land forces", "Naval forces"},
		[]string{"1. Personnel", "5. Total (1+2+3+4)"},
	)
	require.NoError(t, err)
	e := NewExtractor(tax, Options{})

	record := extractHTML(t, e, `<table>
		<tr><th></th><th>Land forces</th><th>Air forces</th><th>Navy</th></tr>
		<tr><td>1. Personnel</td><td>1</td><td>2</td><td>3</td></tr>
		<tr><td>2. Operations</td><td>4</td><td>5</td><td>6</td></tr>
		<tr><td>Total</td><td>7</td><td>8</td><td>9</td></tr>
	</table>`)

	require.Equal(t, map[string]float64{
		"Land forces - 1. Personnel":        1,
		"Naval forces - 1. Personnel":       3,
		"Land forces - 5. Total (1+2+3+4)":  7,
		"Naval forces - 5. Total (1+2+3+4)": 9,
	}, record.FieldData)
	for field := range record.FieldData {
		require.True(t, tax.Contains(field))
	}
}

func TestDefinitionListLayout(t *testing.T) {
	e := newTestExtractor(t)
	record := extractHTML(t, e, readFixture(t, "definition_list.html"))

	expected := milex.Record{
		Country:            "LTU",
		Year:               2024,
		PageLink:           "https://milex-reporting.unoda.org/en/states/LTU/2024",
		NationalCurrency:   strp("Litas (LTL)"),
		UnitOfMeasure:      strp("Thousands"),
		ExplanatoryRemarks: strp("Figures include military pensions."),
		FieldData: map[string]float64{
			"Land forces - 1. Personnel":                            42000,
			"Naval forces - 1. Personnel":                           1500,
			"Total Expenditure - 1. Personnel":                      43500,
			"Land forces - 1.1 Conscripts":                          2000.5,
			"Total Expenditure - 1.1 Conscripts":                    2000.5,
			"Land forces - 5. Total (1+2+3+4)":                      50000,
			"Naval forces - 5. Total (1+2+3+4)":                     1500,
			"Total Expenditure - 5. Total (1+2+3+4)":                51500,
			"Land forces - 4.2 Development, testing and evaluation": 7,
		},
	}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Fatal(diff)
	}
}

func TestParagraphPairLayout(t *testing.T) {
	e := newTestExtractor(t)
	record := extractHTML(t, e, readFixture(t, "paragraph_pair.html"))

	expected := milex.Record{
		Country:             "LTU",
		Year:                2024,
		PageLink:            "https://milex-reporting.unoda.org/en/states/LTU/2024",
		NationalCurrency:    strp("Euro (EUR)"),
		UnitOfMeasure:       strp("Millions"),
		TotalExpenditureAll: floatp(1234567.5),
		FieldData: map[string]float64{
			"Strategic forces - 1. Personnel":                   100,
			"Air forces - 1. Personnel":                         2,
			"UN Peace Keeping - 1. Personnel":                   3,
			"Total Expenditure - 1. Personnel":                  6,
			"Strategic forces - 2. Operations and maintenance":  10,
			"Air forces - 2. Operations and maintenance":        20,
			"UN Peace Keeping - 2. Operations and maintenance":  30,
			"Total Expenditure - 2. Operations and maintenance": 60,
			"Air forces - 3.1.10 Non-armoured vehicles":         5.25,
			"Total Expenditure - 3.1.10 Non-armoured vehicles":  5.25,
			"Strategic forces - 5. Total (1+2+3+4)":             11,
			"Air forces - 5. Total (1+2+3+4)":                   27.25,
			"UN Peace Keeping - 5. Total (1+2+3+4)":             33,
			"Total Expenditure - 5. Total (1+2+3+4)":            71.25,
		},
	}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Fatal(diff)
	}
}

func TestNilReport(t *testing.T) {
	e := newTestExtractor(t)
	record := extractHTML(t, e, readFixture(t, "nil_report.html"))

	require.Equal(t,
		strp("The Government of the Republic reports that it has no armed forces and no military expenditure for the reporting year."),
		record.NilReportExpenditure,
	)
	require.Nil(t, record.NationalCurrency)
	require.Empty(t, record.FieldData)
	require.Equal(t, milex.StatusNoData, milex.Classify(record))

	record = extractHTML(t, e, `<div class="report loaded"><p>Loading...</p></div>`)
	require.Nil(t, record.NilReportExpenditure)

	record = extractHTML(t, e, `<div class="report"><p>This paragraph is long enough to count.</p></div>`)
	require.Nil(t, record.NilReportExpenditure)
}

func TestLayoutOrder(t *testing.T) {
	e := newTestExtractor(t)
	html := `
		<div class="currency-and-unit"><p>National currency</p><p>: Euro</p></div>
		<dl><dt>National Currency</dt><dd>Litas</dd><dt>Unit of Measure</dt><dd></dd></dl>
		<div class="currency-and-unit"><p>Unit of measure</p><p>: Units</p></div>`
	record := extractHTML(t, e, html)
	require.Equal(t, strp("Litas"), record.NationalCurrency)
	require.Equal(t, strp("Units"), record.UnitOfMeasure)

	paragraphsOnly := NewExtractor(e.tax, Options{Layouts: []Layout{ParagraphPair{}}})
	record = extractHTML(t, paragraphsOnly, html)
	require.Equal(t, strp("Euro"), record.NationalCurrency)
}

func TestTotalExpenditureHeading(t *testing.T) {
	e := newTestExtractor(t)

	record := extractHTML(t, e, `<h3>Total expenditure</h3><h1>n/a</h1>`)
	require.Nil(t, record.TotalExpenditureAll)

	record = extractHTML(t, e, `<h1>5</h1><h3>Total expenditure</h3>`)
	require.Nil(t, record.TotalExpenditureAll)

	record = extractHTML(t, e, `<h2>Total expenditure</h2><h1>5</h1>`)
	require.Nil(t, record.TotalExpenditureAll)
}

func TestSimilarityOption(t *testing.T) {
	tax, err := taxonomy.Default()
	require.NoError(t, err)
	html := `<table>
		<tr><td></td><td>Land forces</td></tr>
		<tr><td>Ammunitions</td><td>3</td></tr>
	</table>`

	record := extractHTML(t, NewExtractor(tax, Options{}), html)
	require.Empty(t, record.FieldData)

	fuzzy := NewExtractor(tax, Options{
		Subcategory: match.SubcategoryOptions{SimilarityThreshold: 0.9},
	})
	record = extractHTML(t, fuzzy, html)
	require.Equal(t, map[string]float64{"Land forces - 3.1.8 Ammunition": 3}, record.FieldData)
}

func TestExtractIdempotent(t *testing.T) {
	e := newTestExtractor(t)
	for _, fixture := range []string{"definition_list.html", "paragraph_pair.html", "nil_report.html"} {
		html := readFixture(t, fixture)

		first, err := json.Marshal(extractHTML(t, e, html))
		require.NoError(t, err)
		second, err := json.Marshal(extractHTML(t, e, html))
		require.NoError(t, err)
		require.Equal(t, string(first), string(second), fixture)
	}
}
