package store

import (
	"context"
	"database/sql"
	"milex-scraper/internal/milex"
	"time"
)

// StatusEntry is one row of the scrape status log.
type StatusEntry struct {
	Country     string
	Year        int
	Status      milex.Status
	Error       string
	LastAttempt time.Time
	RunID       string
}

// SetStatus records the latest status of a country-year, stamped with the
// store clock.
func (s *Store) SetStatus(ctx context.Context, country string, year int, status milex.Status, errMessage, runID string) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert or replace into scraping_metadata
		(country, year, status, error_message, last_attempt, run_id)
		values (?, ?, ?, ?, ?, ?)`,
		country,
		year,
		string(status),
		nullString(errMessage),
		s.clock.Now().Unix(),
		nullString(runID),
	)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Status returns the status entry of a country-year, ok is false when it was
// never attempted.
func (s *Store) Status(ctx context.Context, country string, year int) (StatusEntry, bool, error) {
	rows, err := s.queryStatus(
		ctx,
		"where country = ? and year = ?",
		country, year,
	)
	if err != nil {
		return StatusEntry{}, false, err
	}
	if len(rows) == 0 {
		return StatusEntry{}, false, nil
	}
	return rows[0], true, nil
}

// Failed lists failed attempts, most recent first.
func (s *Store) Failed(ctx context.Context) ([]StatusEntry, error) {
	return s.queryStatus(
		ctx,
		"where status = ? order by last_attempt desc, country, year",
		string(milex.StatusFailed),
	)
}

func (s *Store) queryStatus(ctx context.Context, clause string, args ...any) ([]StatusEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select country, year, status, error_message, last_attempt, run_id
		from scraping_metadata `+clause,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusEntry
	for rows.Next() {
		var (
			entry       StatusEntry
			status      string
			errMessage  sql.NullString
			lastAttempt int64
			runID       sql.NullString
		)
		err = rows.Scan(&entry.Country, &entry.Year, &status, &errMessage, &lastAttempt, &runID)
		if err != nil {
			return nil, err
		}
		entry.Status = milex.Status(status)
		entry.Error = errMessage.String
		entry.LastAttempt = time.Unix(lastAttempt, 0).In(s.clock.Location())
		entry.RunID = runID.String
		out = append(out, entry)
	}
	return out, rows.Err()
}

// StatusCount is the number of country-years currently in a status.
type StatusCount struct {
	Status milex.Status
	Count  int
}

// Progress counts the status log by status.
func (s *Store) Progress(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select status, count(*) from scraping_metadata group by status order by status",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var (
			c      StatusCount
			status string
		)
		err = rows.Scan(&status, &c.Count)
		if err != nil {
			return nil, err
		}
		c.Status = milex.Status(status)
		out = append(out, c)
	}
	return out, rows.Err()
}
