// Package store persists extracted records and the per country-year scrape
// status in sqlite or libsql.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"milex-scraper/internal/components/assert"
	"milex-scraper/internal/components/chrono"
	"milex-scraper/internal/milex"
	"milex-scraper/internal/taxonomy"
	configlibsql "milex-scraper/lib/configutil/libsql"
	"strconv"
	"strings"
	"time"
)

// Store is safe for concurrent use, sqlite serializes writers through a
// single connection.
type Store struct {
	db    *sql.DB
	tax   taxonomy.Taxonomy
	clock chrono.API
}

// New creates the tables of the taxonomy on db if they do not exist.
func New(db *sql.DB, tax taxonomy.Taxonomy, clock chrono.API) (*Store, error) {
	assert.NotNil(db)
	assert.NotNil(clock)

	schema, err := Schema(tax)
	if err != nil {
		return nil, err
	}
	for _, stmt := range schema {
		_, err = db.Exec(stmt)
		if err != nil {
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Store{db: db, tax: tax, clock: clock}, nil
}

// Open opens the configured database and prepares it for the taxonomy.
func Open(cfg configlibsql.Struct, tax taxonomy.Taxonomy, clock chrono.API) (*Store, error) {
	db, err := cfg.OpenDB()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg, err)
	}
	s, err := New(db, tax, clock)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Taxonomy() taxonomy.Taxonomy {
	return s.tax
}

// Put inserts the record of a country-year, replacing any earlier one.
func (s *Store) Put(ctx context.Context, r milex.Record) error {
	for field := range r.FieldData {
		if !s.tax.Contains(field) {
			return fmt.Errorf("put %s: unknown field %q", r, field)
		}
	}

	columns := []string{
		colCountry,
		colYear,
		colNationalCurrency,
		colUnitOfMeasure,
		colTotalExpenditureAll,
		colExplanatoryRemarks,
		colNilReportExpenditure,
		colPageLink,
		colScrapedAt,
	}
	values := []any{
		r.Country,
		r.Year,
		r.NationalCurrency,
		r.UnitOfMeasure,
		r.TotalExpenditureAll,
		r.ExplanatoryRemarks,
		r.NilReportExpenditure,
		r.PageLink,
		s.clock.Now().Unix(),
	}
	for _, field := range s.tax.Fields() {
		value, ok := r.FieldData[field]
		if !ok {
			continue
		}
		columns = append(columns, taxonomy.FieldToColumn(field))
		values = append(values, value)
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(c)
	}
	query := fmt.Sprintf(
		"insert or replace into expenditures (%s) values (%s)",
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", "),
	)
	_, err := s.db.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("put %s: %w", r, err)
	}
	return nil
}

// Exists reports whether a record is stored for the country-year.
func (s *Store) Exists(ctx context.Context, country string, year int) (bool, error) {
	var one int
	err := s.db.QueryRowContext(
		ctx,
		"select 1 from expenditures where country = ? and year = ?",
		country, year,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// StoredRecord is a record together with the time it was written.
type StoredRecord struct {
	milex.Record
	ScrapedAt time.Time
}

// Get reads back the record of a country-year, ok is false when there is
// none.
func (s *Store) Get(ctx context.Context, country string, year int) (StoredRecord, bool, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select * from expenditures where country = ? and year = ?",
		country, year,
	)
	if err != nil {
		return StoredRecord{}, false, err
	}
	defer rows.Close()

	var out StoredRecord
	found := false
	err = s.scanRows(rows, func(r StoredRecord) error {
		out = r
		found = true
		return nil
	})
	if err != nil {
		return StoredRecord{}, false, err
	}
	return out, found, nil
}

// Each calls fn for every stored record ordered by country then year, it
// stops at the first error fn returns. fn must not call back into the store,
// the only connection is busy until Each returns.
func (s *Store) Each(ctx context.Context, fn func(StoredRecord) error) error {
	rows, err := s.db.QueryContext(ctx, "select * from expenditures order by country, year")
	if err != nil {
		return err
	}
	defer rows.Close()
	return s.scanRows(rows, fn)
}

func (s *Store) scanRows(rows *sql.Rows, fn func(StoredRecord) error) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		err = rows.Scan(ptrs...)
		if err != nil {
			return err
		}
		record, err := s.decode(columns, values)
		if err != nil {
			return err
		}
		err = fn(record)
		if err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) decode(columns []string, values []any) (StoredRecord, error) {
	out := StoredRecord{Record: milex.Record{FieldData: map[string]float64{}}}
	for i, column := range columns {
		v := values[i]
		var err error
		switch column {
		case "id":
		case colCountry:
			out.Country = asString(v)
		case colYear:
			var year float64
			year, _, err = asFloat(v)
			out.Year = int(year)
		case colNationalCurrency:
			out.NationalCurrency = asStringPtr(v)
		case colUnitOfMeasure:
			out.UnitOfMeasure = asStringPtr(v)
		case colTotalExpenditureAll:
			out.TotalExpenditureAll, err = asFloatPtr(v)
		case colExplanatoryRemarks:
			out.ExplanatoryRemarks = asStringPtr(v)
		case colNilReportExpenditure:
			out.NilReportExpenditure = asStringPtr(v)
		case colPageLink:
			out.PageLink = asString(v)
		case colScrapedAt:
			var unix float64
			unix, _, err = asFloat(v)
			out.ScrapedAt = time.Unix(int64(unix), 0).In(s.clock.Location())
		default:
			field := s.tax.ColumnToField(column)
			if !s.tax.Contains(field) {
				// columns of another taxonomy sharing the table
				continue
			}
			value, ok, ferr := asFloat(v)
			err = ferr
			if ok {
				out.FieldData[field] = value
			}
		}
		if err != nil {
			return StoredRecord{}, fmt.Errorf("column %s: %w", column, err)
		}
	}
	return out, nil
}

func asString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func asStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	return &s
}

// asFloat converts a driver value of a REAL or INTEGER column, ok is false
// for NULL.
func asFloat(v any) (float64, bool, error) {
	switch v := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case int64:
		return float64(v), true, nil
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil, err
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil, err
	default:
		return 0, false, fmt.Errorf("unexpected value %T", v)
	}
}

func asFloatPtr(v any) (*float64, error) {
	f, ok, err := asFloat(v)
	if err != nil || !ok {
		return nil, err
	}
	return &f, nil
}

// Key identifies a country-year.
type Key struct {
	Country string
	Year    int
}

// Keys returns every stored country-year.
func (s *Store) Keys(ctx context.Context) (map[Key]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "select country, year from expenditures")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[Key]struct{}{}
	for rows.Next() {
		var k Key
		err = rows.Scan(&k.Country, &k.Year)
		if err != nil {
			return nil, err
		}
		out[k] = struct{}{}
	}
	return out, rows.Err()
}

// Clear deletes every record and status entry.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "delete from scraping_metadata")
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "delete from expenditures")
	if err != nil {
		return err
	}
	return tx.Commit()
}
