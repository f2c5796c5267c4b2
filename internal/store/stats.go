package store

import (
	"context"
	"database/sql"
)

// Stats summarizes the expenditures table.
type Stats struct {
	Records    int
	Countries  int
	WithData   int
	NilReports int
	// MinYear and MaxYear are 0 when the table is empty.
	MinYear  int
	MaxYear  int
	Progress []StatusCount
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		out              Stats
		minYear, maxYear sql.NullInt64
		withData         sql.NullInt64
		nilReports       sql.NullInt64
	)
	err := s.db.QueryRowContext(
		ctx,
		`select
			count(*),
			count(distinct country),
			min(year),
			max(year),
			sum(case when total_expenditure_all is not null then 1 else 0 end),
			sum(case when nil_report_expenditure is not null then 1 else 0 end)
		from expenditures`,
	).Scan(&out.Records, &out.Countries, &minYear, &maxYear, &withData, &nilReports)
	if err != nil {
		return Stats{}, err
	}
	out.MinYear = int(minYear.Int64)
	out.MaxYear = int(maxYear.Int64)
	out.WithData = int(withData.Int64)
	out.NilReports = int(nilReports.Int64)

	out.Progress, err = s.Progress(ctx)
	if err != nil {
		return Stats{}, err
	}
	return out, nil
}

// CountryYears is the stored year span of one country.
type CountryYears struct {
	Country string
	Years   int
	First   int
	Last    int
}

// Countries lists stored countries alphabetically.
func (s *Store) Countries(ctx context.Context) ([]CountryYears, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select country, count(*), min(year), max(year)
		from expenditures group by country order by country`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CountryYears
	for rows.Next() {
		var c CountryYears
		err = rows.Scan(&c.Country, &c.Years, &c.First, &c.Last)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// YearCountries is the number of stored countries of one year.
type YearCountries struct {
	Year      int
	Countries int
}

// Years lists stored years in ascending order.
func (s *Store) Years(ctx context.Context) ([]YearCountries, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select year, count(*) from expenditures group by year order by year",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []YearCountries
	for rows.Next() {
		var y YearCountries
		err = rows.Scan(&y.Year, &y.Countries)
		if err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}
