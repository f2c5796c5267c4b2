// Package scraper runs extraction over a range of countries and years,
// storing every record and keeping the status log current.
package scraper

import (
	"context"
	"fmt"
	"milex-scraper/internal/components/assert"
	"milex-scraper/internal/components/chrono"
	"milex-scraper/internal/components/telemetry"
	"milex-scraper/internal/extract"
	"milex-scraper/internal/fetch"
	"milex-scraper/internal/milex"
	"milex-scraper/internal/store"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	report_scraper_plan   = "scraper.plan"
	report_scraper_status = "scraper.status"
	report_scraper_store  = "scraper.store"
	report_scraper_page   = "scraper.page"
	report_scraper_count  = "scraper.pages"
)

// Store is the persistence a run needs, implemented by *store.Store.
type Store interface {
	Keys(ctx context.Context) (map[store.Key]struct{}, error)
	Put(ctx context.Context, r milex.Record) error
	SetStatus(ctx context.Context, country string, year int, status milex.Status, errMessage, runID string) error
}

type Options struct {
	Countries []string
	Years     []int
	// Resume skips country-years that already have a stored record.
	Resume bool
	// Concurrency is the number of pages in flight, at least 1.
	Concurrency int
	// Delay is the minimum time between two page requests.
	Delay time.Duration
	// OnResult is called from a single goroutine after every page.
	OnResult func(PageResult)
}

// PageResult is the outcome of one country-year.
type PageResult struct {
	Index   int
	Total   int
	Country string
	Year    int
	Status  milex.Status
	Fields  int
	Error   string
	Elapsed time.Duration
}

type Scraper struct {
	fetcher   fetch.Fetcher
	extractor extract.Extractor
	store     Store
	tel       telemetry.API
	clock     chrono.API

	pages    metric.Int64Counter
	pageTime metric.Float64Histogram
}

func New(fetcher fetch.Fetcher, extractor extract.Extractor, s Store, tel telemetry.API, clock chrono.API) *Scraper {
	assert.NotNil(fetcher)
	assert.NotNil(s)
	assert.NotNil(tel)
	assert.NotNil(clock)

	meter := otel.Meter("milex.scraper")
	pages, _ := meter.Int64Counter("pages", metric.WithDescription("scraped country-years by status"))
	pageTime, _ := meter.Float64Histogram("page_seconds", metric.WithUnit("s"))

	return &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
		store:     s,
		tel:       telemetry.NewScopedAPI("scraper", tel),
		clock:     clock,
		pages:     pages,
		pageTime:  pageTime,
	}
}

type job struct {
	country string
	year    int
}

// event is sent by workers to the writer, record is unset on start events.
type event struct {
	job
	index   int
	started bool
	record  milex.Record
	elapsed time.Duration
}

// ScrapePage fetches and extracts one country-year. Fetch failures come back
// as a failed record, never as an error.
func (s *Scraper) ScrapePage(ctx context.Context, country string, year int) milex.Record {
	page, err := s.fetcher.Fetch(ctx, country, year)
	if err != nil {
		return milex.FailedRecord(country, year, s.fetcher.URL(country, year), err)
	}
	record, err := s.extractor.Extract(page)
	if err != nil {
		return milex.FailedRecord(country, year, page.URL, err)
	}
	return record
}

func (s *Scraper) plan(ctx context.Context, opts Options) ([]job, int, error) {
	var done map[store.Key]struct{}
	if opts.Resume {
		var err error
		done, err = s.store.Keys(ctx)
		if err != nil {
			s.tel.ReportBroken(report_scraper_plan, err)
			return nil, 0, fmt.Errorf("read stored records: %w", err)
		}
	}

	var jobs []job
	skipped := 0
	for _, country := range opts.Countries {
		for _, year := range opts.Years {
			if _, ok := done[store.Key{Country: country, Year: year}]; ok {
				skipped++
				continue
			}
			jobs = append(jobs, job{country: country, year: year})
		}
	}
	return jobs, skipped, nil
}

// Run scrapes every planned country-year. Canceling ctx stops scheduling new
// pages, pages already in flight are finished and written before Run
// returns. Only the resume lookup can make Run fail.
func (s *Scraper) Run(ctx context.Context, opts Options) (Summary, error) {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	jobs, skipped, err := s.plan(ctx, opts)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RunID:   uuid.NewString(),
		Planned: len(jobs) + skipped,
		Skipped: skipped,
		Counts:  map[milex.Status]int{},
	}
	start := s.clock.Now()

	events := make(chan event)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ev := range events {
			s.write(ev, len(jobs), &summary, opts.OnResult)
		}
	}()

	var limiter *rate.Limiter
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}

	// in-flight pages outlive a canceled run
	workCtx := context.WithoutCancel(ctx)
	var group errgroup.Group
	group.SetLimit(concurrency)
	for i, j := range jobs {
		if limiter != nil && limiter.Wait(ctx) != nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
		i, j := i, j
		group.Go(func() error {
			events <- event{job: j, index: i + 1, started: true}
			pageStart := s.clock.Now()
			record := s.ScrapePage(workCtx, j.country, j.year)
			events <- event{
				job:     j,
				index:   i + 1,
				record:  record,
				elapsed: s.clock.Now().Sub(pageStart),
			}
			return nil
		})
	}
	group.Wait()
	close(events)
	<-writerDone

	summary.Interrupted = ctx.Err() != nil
	summary.Duration = s.clock.Now().Sub(start)
	for status, n := range summary.Counts {
		s.tel.ReportCount(fmt.Sprintf("%s.%s", report_scraper_count, status), int64(n))
	}
	return summary, nil
}

// write owns every store write of a run, it runs on a single goroutine.
func (s *Scraper) write(ev event, total int, summary *Summary, onResult func(PageResult)) {
	ctx := context.Background()

	if ev.started {
		err := s.store.SetStatus(ctx, ev.country, ev.year, milex.StatusInProgress, "", summary.RunID)
		if err != nil {
			s.tel.ReportBroken(report_scraper_status, ev.country, ev.year, err)
		}
		return
	}

	record := ev.record
	status := milex.Classify(record)
	message := record.Error
	if status != milex.StatusFailed {
		err := s.store.Put(ctx, record)
		if err != nil {
			s.tel.ReportBroken(report_scraper_store, ev.country, ev.year, err)
			status = milex.StatusFailed
			message = fmt.Sprintf("store: %s", err.Error())
		}
	} else {
		s.tel.ReportWarning(report_scraper_page, ev.country, ev.year, message)
	}

	err := s.store.SetStatus(ctx, ev.country, ev.year, status, message, summary.RunID)
	if err != nil {
		s.tel.ReportBroken(report_scraper_status, ev.country, ev.year, err)
	}

	summary.record(status, ev.elapsed)
	attrs := metric.WithAttributes(attribute.String("status", string(status)))
	s.pages.Add(ctx, 1, attrs)
	s.pageTime.Record(ctx, ev.elapsed.Seconds(), attrs)

	result := PageResult{
		Index:   ev.index,
		Total:   total,
		Country: ev.country,
		Year:    ev.year,
		Status:  status,
		Fields:  len(record.FieldData),
		Error:   message,
		Elapsed: ev.elapsed,
	}
	s.tel.ReportDebug("page done", result.Country, result.Year, string(result.Status), result.Fields)
	if onResult != nil {
		onResult(result)
	}
}
