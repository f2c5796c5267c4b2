package match

import "milex-scraper/internal/taxonomy"

// CategoryAliases absorb header wording that drifted across reporting years.
var CategoryAliases = []Alias{
	{Keyword: "strategic", Name: "Strategic forces"},
	{Keyword: "land", Name: "Land forces"},
	{Keyword: "naval", Name: "Naval forces"},
	{Keyword: "navy", Name: "Naval forces"},
	{Keyword: "air", Name: "Air forces"},
	{Keyword: "other military", Name: "Other Military Forces"},
	{Keyword: "central support", Name: "Central Support Administration and Command"},
	{Keyword: "administration", Name: "Central Support Administration and Command"},
	{Keyword: "peacekeeping", Name: "UN Peace Keeping"},
	{Keyword: "un peace", Name: "UN Peace Keeping"},
	{Keyword: "assistance", Name: "Military Assistance and Cooperation"},
	{Keyword: "cooperation", Name: "Military Assistance and Cooperation"},
	{Keyword: "emergency", Name: "Emergency Aid to Civilians"},
	{Keyword: "undistributed", Name: "Undistributed"},
	{Keyword: "total", Name: "Total Expenditure"},
}

// NewCategoryMatcher resolves table header cells to force groups.
func NewCategoryMatcher(tax taxonomy.Taxonomy) Matcher {
	categories := tax.Categories()
	return NewMatcher(
		Substring(categories),
		Aliases(CategoryAliases, categories),
	)
}
