package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	scoped := NewScopedAPI("scraper", rec)
	nested := NewScopedAPI("worker", scoped)

	scoped.ReportBroken("store.put", errors.New("disk full"))
	nested.ReportWarning("fetch", "LTU", 2024)
	scoped.ReportDebug("starting")
	scoped.ReportCount("pages", 3)

	require.Len(t, rec.Find(KindBroken, "scraper: store.put"), 1)

	warnings := rec.Find(KindWarning, "scraper: worker: fetch")
	require.Len(t, warnings, 1)
	require.Equal(t, []any{"LTU", 2024}, warnings[0].Params)

	require.Len(t, rec.Find(KindDebug, "scraper: starting"), 1)

	counts := rec.Find(KindCount, "scraper: pages")
	require.Len(t, counts, 1)
	require.Equal(t, int64(3), counts[0].Count)

	require.Len(t, rec.Reports(), 4)
}

func TestRecorderReportsCopy(t *testing.T) {
	rec := &Recorder{}
	rec.ReportDebug("a")
	reports := rec.Reports()
	reports[0].ID = "changed"
	require.Equal(t, "a", rec.Reports()[0].ID)
}
