// Package fetch retrieves MILEX report pages.
package fetch

import (
	"context"
	"fmt"
	"milex-scraper/internal/components/assert"
	"milex-scraper/internal/components/telemetry"
	"milex-scraper/internal/extract"
	libtelemetry "milex-scraper/lib/telemetry"
	"milex-scraper/lib/util/restyutil"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_fetch_page = "fetch.page"
)

// Fetcher retrieves the report page of one country-year.
//
// note: fault injection point
type Fetcher interface {
	// URL is the address Fetch retrieves for the country-year.
	URL(country string, year int) string
	Fetch(ctx context.Context, country string, year int) (extract.Page, error)
}

// PageURL is the address of the report page of a country-year.
func PageURL(baseURL, country string, year int) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + url.PathEscape(country) + "/" + strconv.Itoa(year)
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// CloudflareBypass wraps the transport so requests pass the portal's bot
	// protection.
	CloudflareBypass bool
	// Save keeps a copy of every fetched page as COUNTRY_YEAR.html.
	Save *restyutil.FilesystemOutput
}

// HTTPFetcher fetches pages over HTTP, it is safe for concurrent use.
type HTTPFetcher struct {
	http    *resty.Client
	baseURL string
	tel     telemetry.API
	tracer  trace.Tracer
}

func NewHTTPFetcher(opts Options, tel telemetry.API) *HTTPFetcher {
	assert.NotEmptyStr(opts.BaseURL)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("fetch", tel)

	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	client.SetHeader("accept", "text/html,application/xhtml+xml")
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.Save != nil {
		restyutil.SaveResponses(client, *opts.Save, pageFileName)
	}
	telemetry.InstrumentResty(client, tel)
	libtelemetry.InstrumentResty(client, "milex.fetch.http")

	return &HTTPFetcher{
		http:    client,
		baseURL: opts.BaseURL,
		tel:     tel,
		tracer:  otel.Tracer("milex.fetch"),
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// pageFileName names a saved page after the last two segments of its URL.
func pageFileName(res *resty.Response) string {
	u, err := url.Parse(res.Request.URL)
	if err != nil {
		return ""
	}
	year := path.Base(u.Path)
	country := path.Base(path.Dir(u.Path))
	if year == "/" || country == "/" || country == "." {
		return ""
	}
	return fmt.Sprintf("%s_%s.html", country, year)
}

func (f *HTTPFetcher) URL(country string, year int) string {
	return PageURL(f.baseURL, country, year)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, country string, year int) (extract.Page, error) {
	link := f.URL(country, year)

	ctx, span := f.tracer.Start(ctx, "fetch.page", trace.WithAttributes(
		attribute.String("country", country),
		attribute.Int("year", year),
	))
	defer span.End()

	res, err := f.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		f.tel.ReportWarning(report_fetch_page, link, err)
		return extract.Page{}, fmt.Errorf("GET %s: %w", link, err)
	}
	if res.IsError() {
		err = StatusError{URL: link, StatusCode: res.StatusCode(), Status: res.Status()}
		span.SetStatus(codes.Error, err.Error())
		f.tel.ReportWarning(report_fetch_page, link, res.StatusCode())
		return extract.Page{}, err
	}

	span.SetAttributes(attribute.Int("body_length", len(res.Body())))
	return extract.Page{
		Country: country,
		Year:    year,
		URL:     link,
		HTML:    res.String(),
	}, nil
}
