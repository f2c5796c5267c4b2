package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestSaveResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		w.Write([]byte("body of " + r.URL.Path))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "pages")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	SaveResponses(client, out, func(res *resty.Response) string {
		if res.Request.RawRequest.URL.Path == "/skipped" {
			return ""
		}
		return path.Base(res.Request.RawRequest.URL.Path) + ".html"
	})

	for _, p := range []string{"/saved", "/missing", "/skipped"} {
		_, err = client.R().Get(srv.URL + p)
		require.NoError(t, err)
	}

	contents, err := os.ReadFile(out.Path("saved.html"))
	require.NoError(t, err)
	require.Equal(t, "body of /saved", string(contents))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
