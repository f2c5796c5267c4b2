package fetch

import (
	"context"
	"errors"
	"milex-scraper/internal/components/telemetry"
	"milex-scraper/lib/util/restyutil"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPageURL(t *testing.T) {
	require.Equal(t,
		"https://milex-reporting.unoda.org/en/states/LTU/2024",
		PageURL("https://milex-reporting.unoda.org/en/states", "LTU", 2024),
	)
	require.Equal(t,
		"http://localhost/states/USA/1998",
		PageURL("http://localhost/states/", "USA", 1998),
	)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/states/LTU/2024", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("user-agent") != "milex-test" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("content-type", "text/html")
		w.Write([]byte("<html><body><h3>Total expenditure</h3><h1>1</h1></body></html>"))
	})
	mux.HandleFunc("/states/LTU/2023", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newTestServer(t)
	rec := &telemetry.Recorder{}
	f := NewHTTPFetcher(Options{
		BaseURL:   srv.URL + "/states",
		Timeout:   50 * time.Millisecond,
		UserAgent: "milex-test",
	}, rec)

	page, err := f.Fetch(context.Background(), "LTU", 2024)
	require.NoError(t, err)
	require.Equal(t, "LTU", page.Country)
	require.Equal(t, 2024, page.Year)
	require.Equal(t, srv.URL+"/states/LTU/2024", page.URL)
	require.Contains(t, page.HTML, "<h1>1</h1>")

	_, err = f.Fetch(context.Background(), "FRA", 2024)
	var statusErr StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Len(t, rec.Find(telemetry.KindWarning, "fetch: fetch.page"), 1)

	_, err = f.Fetch(context.Background(), "LTU", 2023)
	require.Error(t, err)
	require.Len(t, rec.Find(telemetry.KindWarning, "fetch: fetch.page"), 2)
}

func TestFetchCanceled(t *testing.T) {
	srv := newTestServer(t)
	f := NewHTTPFetcher(Options{BaseURL: srv.URL + "/states"}, &telemetry.Recorder{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := f.Fetch(ctx, "LTU", 2023)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchSavesPages(t *testing.T) {
	srv := newTestServer(t)
	out, err := restyutil.NewFilesystemOutput(t.TempDir())
	require.NoError(t, err)
	f := NewHTTPFetcher(Options{
		BaseURL:   srv.URL + "/states",
		UserAgent: "milex-test",
		Save:      &out,
	}, &telemetry.Recorder{})

	page, err := f.Fetch(context.Background(), "LTU", 2024)
	require.NoError(t, err)
	contents, err := os.ReadFile(out.Path("LTU_2024.html"))
	require.NoError(t, err)
	require.Equal(t, page.HTML, string(contents))

	_, err = f.Fetch(context.Background(), "FRA", 2024)
	require.Error(t, err)
	_, err = os.Stat(out.Path("FRA_2024.html"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
