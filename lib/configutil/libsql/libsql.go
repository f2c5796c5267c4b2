// Package configlibsql is the config block of a database that is either a
// local sqlite file or a remote libsql server.
package configlibsql

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Struct struct {
	// File is a local sqlite path, ":memory:" for a throwaway database.
	File string `json:"file"`
	// Url is a libsql:// (or http(s)://) server, it wins over File.
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (s Struct) Remote() bool {
	return s.Url != ""
}

func (s Struct) String() string {
	if s.Remote() {
		return s.Url
	}
	return s.File
}

func (s Struct) dsn() (driver string, dsn string, err error) {
	if s.Remote() {
		u, err := url.Parse(s.Url)
		if err != nil {
			return "", "", fmt.Errorf("parse database url: %w", err)
		}
		if s.AuthToken != "" {
			q := u.Query()
			q.Set("authToken", s.AuthToken)
			u.RawQuery = q.Encode()
		}
		return "libsql", u.String(), nil
	}
	if s.File == "" {
		return "", "", errors.New("database has neither a file nor a url")
	}
	if s.File == ":memory:" || strings.Contains(s.File, "?") {
		return "sqlite", s.File, nil
	}
	return "sqlite", s.File + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
}

// OpenDB opens the database and runs every schema statement in order.
func (s Struct) OpenDB(schema ...string) (*sql.DB, error) {
	driver, dsn, err := s.dsn()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one writer, and one shared database for ":memory:"
		db.SetMaxOpenConns(1)
	}
	for _, stmt := range schema {
		_, err = db.Exec(stmt)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}
