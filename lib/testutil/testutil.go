// Package testutil prepares the shared fixtures of package tests.
package testutil

import (
	"database/sql"
	"fmt"
	"milex-scraper/internal/components/chrono"
	"milex-scraper/internal/components/telemetry"
	configlibsql "milex-scraper/lib/configutil/libsql"
	libtelemetry "milex-scraper/lib/telemetry"
	"testing"
	"time"
)

// Epoch is the instant the test clock is fixed at.
var Epoch = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

type ServiceParams struct {
	Name string
	// Schema statements run on the fresh in-memory database.
	Schema []string
}

type ServiceResult struct {
	DB        *sql.DB
	Clock     chrono.FixedImpl
	Telemetry *telemetry.Recorder
}

// SetupService opens an in-memory sqlite database and a recording telemetry
// API, both released when the test ends.
func SetupService(t testing.TB, params ServiceParams) ServiceResult {
	t.Helper()

	cleanup := libtelemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))
	t.Cleanup(cleanup)

	db, err := configlibsql.Struct{File: ":memory:"}.OpenDB(params.Schema...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return ServiceResult{
		DB:        db,
		Clock:     chrono.FixedImpl{At: Epoch},
		Telemetry: &telemetry.Recorder{},
	}
}
