package scraper

import (
	"context"
	"errors"
	"fmt"
	"milex-scraper/internal/components/telemetry"
	"milex-scraper/internal/extract"
	"milex-scraper/internal/fetch"
	"milex-scraper/internal/milex"
	"milex-scraper/internal/store"
	"milex-scraper/internal/taxonomy"
	"milex-scraper/lib/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const tablePage = `<table>
	<tr><td></td><td>Land forces</td></tr>
	<tr><td>1. Personnel</td><td>42,000</td></tr>
</table>`

const nilPage = `<div class="report loaded"><p>No expenditure is reported for this year by the state.</p></div>`

type fakeFetcher struct {
	pages map[string]string
	mu    sync.Mutex
	calls []string
}

func pageKey(country string, year int) string {
	return fmt.Sprintf("%s/%d", country, year)
}

func (f *fakeFetcher) URL(country string, year int) string {
	return fetch.PageURL("https://milex.test/en/states", country, year)
}

func (f *fakeFetcher) Fetch(ctx context.Context, country string, year int) (extract.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageKey(country, year))
	f.mu.Unlock()

	html, ok := f.pages[pageKey(country, year)]
	if !ok {
		return extract.Page{}, errors.New("404 Not Found")
	}
	return extract.Page{Country: country, Year: year, URL: f.URL(country, year), HTML: html}, nil
}

type setup struct {
	scraper *Scraper
	store   *store.Store
	fetcher *fakeFetcher
	tel     *telemetry.Recorder
}

func setupScraper(t *testing.T, pages map[string]string) setup {
	t.Helper()
	res := testutil.SetupService(t, testutil.ServiceParams{Name: "scraper"})
	tax, err := taxonomy.Default()
	require.NoError(t, err)
	st, err := store.New(res.DB, tax, res.Clock)
	require.NoError(t, err)

	f := &fakeFetcher{pages: pages}
	s := New(f, extract.NewExtractor(tax, extract.Options{}), st, res.Telemetry, res.Clock)
	return setup{scraper: s, store: st, fetcher: f, tel: res.Telemetry}
}

func TestRun(t *testing.T) {
	env := setupScraper(t, map[string]string{
		"LTU/2023": tablePage,
		"LTU/2024": tablePage,
		"FRA/2023": nilPage,
	})
	ctx := context.Background()

	var results []PageResult
	summary, err := env.scraper.Run(ctx, Options{
		Countries:   []string{"LTU", "FRA"},
		Years:       []int{2023, 2024},
		Concurrency: 2,
		OnResult: func(r PageResult) {
			results = append(results, r)
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	require.Equal(t, 4, summary.Planned)
	require.Equal(t, 0, summary.Skipped)
	require.Equal(t, 4, summary.Attempted())
	require.False(t, summary.Interrupted)
	require.Equal(t, map[milex.Status]int{
		milex.StatusSuccess: 2,
		milex.StatusNoData:  1,
		milex.StatusFailed:  1,
	}, summary.Counts)
	require.Len(t, results, 4)

	stored, ok, err := env.store.Get(ctx, "LTU", 2024)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, map[string]float64{"Land forces - 1. Personnel": 42000}, stored.FieldData)
	require.Equal(t, "https://milex.test/en/states/LTU/2024", stored.PageLink)

	// no-data pages are stored, failed ones are not
	_, ok, err = env.store.Get(ctx, "FRA", 2023)
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = env.store.Get(ctx, "FRA", 2024)
	require.NoError(t, err)
	require.False(t, ok)

	entry, ok, err := env.store.Status(ctx, "FRA", 2024)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, milex.StatusFailed, entry.Status)
	require.Equal(t, "404 Not Found", entry.Error)
	require.Equal(t, summary.RunID, entry.RunID)

	entry, ok, err = env.store.Status(ctx, "FRA", 2023)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, milex.StatusNoData, entry.Status)

	require.Len(t, env.tel.Find(telemetry.KindWarning, "scraper: scraper.page"), 1)
	require.Len(t, env.tel.Find(telemetry.KindCount, "scraper: scraper.pages.success"), 1)
}

func TestRunResume(t *testing.T) {
	env := setupScraper(t, map[string]string{
		"LTU/2023": tablePage,
		"LTU/2024": tablePage,
	})
	ctx := context.Background()
	opts := Options{
		Countries: []string{"LTU"},
		Years:     []int{2023, 2024, 2025},
		Resume:    true,
	}

	first, err := env.scraper.Run(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 0, first.Skipped)
	require.Len(t, env.fetcher.calls, 3)

	second, err := env.scraper.Run(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 3, second.Planned)
	require.Equal(t, 2, second.Skipped)
	require.Equal(t, map[milex.Status]int{milex.StatusFailed: 1}, second.Counts)
	require.Equal(t, []string{"LTU/2023", "LTU/2024", "LTU/2025", "LTU/2025"}, env.fetcher.calls)
	require.NotEqual(t, first.RunID, second.RunID)

	opts.Resume = false
	third, err := env.scraper.Run(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 0, third.Skipped)
	require.Equal(t, 3, third.Attempted())
}

func TestRunCanceled(t *testing.T) {
	env := setupScraper(t, map[string]string{"LTU/2024": tablePage})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := env.scraper.Run(ctx, Options{
		Countries: []string{"LTU"},
		Years:     []int{2023, 2024},
	})
	require.NoError(t, err)
	require.True(t, summary.Interrupted)
	require.Equal(t, 0, summary.Attempted())
	require.Empty(t, env.fetcher.calls)
}

func TestRunDelay(t *testing.T) {
	env := setupScraper(t, map[string]string{})

	start := time.Now()
	_, err := env.scraper.Run(context.Background(), Options{
		Countries: []string{"LTU"},
		Years:     []int{2022, 2023, 2024},
		Delay:     20 * time.Millisecond,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestFormatDuration(t *testing.T) {
	table := []struct {
		in       time.Duration
		expected string
	}{
		{0, "0s"},
		{1500 * time.Millisecond, "1s"},
		{59 * time.Second, "59s"},
		{time.Minute, "1m"},
		{time.Hour + 30*time.Second, "1h 30s"},
		{2*time.Hour + 15*time.Minute + 30*time.Second, "2h 15m 30s"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, FormatDuration(row.in), row.in.String())
	}
}

func TestSummaryAverage(t *testing.T) {
	s := Summary{Counts: map[milex.Status]int{}}
	require.Equal(t, time.Duration(0), s.AveragePage())

	s.record(milex.StatusSuccess, 2*time.Second)
	s.record(milex.StatusSuccess, 4*time.Second)
	s.record(milex.StatusFailed, time.Minute)
	require.Equal(t, 3*time.Second, s.AveragePage())
	require.Equal(t, 3, s.Attempted())
}

type brokenStore struct {
	mu       sync.Mutex
	statuses map[string]statusCall
}

type statusCall struct {
	Status  milex.Status
	Message string
}

func (s *brokenStore) Keys(ctx context.Context) (map[store.Key]struct{}, error) {
	return nil, nil
}

func (s *brokenStore) Put(ctx context.Context, r milex.Record) error {
	return errors.New("disk full")
}

func (s *brokenStore) SetStatus(ctx context.Context, country string, year int, status milex.Status, errMessage, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[pageKey(country, year)] = statusCall{Status: status, Message: errMessage}
	return nil
}

func TestRunStoreFailure(t *testing.T) {
	res := testutil.SetupService(t, testutil.ServiceParams{Name: "scraper-store"})
	tax, err := taxonomy.Default()
	require.NoError(t, err)

	st := &brokenStore{statuses: map[string]statusCall{}}
	f := &fakeFetcher{pages: map[string]string{"LTU/2024": tablePage}}
	s := New(f, extract.NewExtractor(tax, extract.Options{}), st, res.Telemetry, res.Clock)

	summary, err := s.Run(context.Background(), Options{
		Countries: []string{"LTU"},
		Years:     []int{2024},
	})
	require.NoError(t, err)
	require.Equal(t, map[milex.Status]int{milex.StatusFailed: 1}, summary.Counts)
	require.Equal(t, statusCall{Status: milex.StatusFailed, Message: "store: disk full"}, st.statuses["LTU/2024"])
	require.Len(t, res.Telemetry.Find(telemetry.KindBroken, "scraper: scraper.store"), 1)
}
