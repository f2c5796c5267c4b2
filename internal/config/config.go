// Package config is the scraper configuration read from config.json5.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"milex-scraper/lib/configutil"
	configlibsql "milex-scraper/lib/configutil/libsql"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/titanous/json5"
)

//go:embed country_codes.json5
var defaultCountries []byte

const (
	DefaultBaseURL   = "https://milex-reporting.unoda.org/en/states"
	DefaultStartYear = 1998
	DefaultEndYear   = 2024
)

// Config is the scraper configuration. Zero fields take their value from
// Defaults, so a zero delay or concurrency cannot be expressed. Timezone is
// the IANA zone timestamps are shown in, UTC when empty.
type Config struct {
	BaseURL               string              `json:"base_url"`
	StartYear             int                 `json:"start_year"`
	EndYear               int                 `json:"end_year"`
	DelaySeconds          float64             `json:"delay_seconds"`
	Concurrency           int                 `json:"concurrency"`
	Database              configlibsql.Struct `json:"database"`
	FieldsFile            string              `json:"fields_file"`
	CountriesFile         string              `json:"countries_file"`
	RequestTimeoutSeconds int                 `json:"request_timeout_seconds"`
	UserAgent             string              `json:"user_agent"`
	CloudflareBypass      bool                `json:"cloudflare_bypass"`
	FuzzyThreshold        float64             `json:"fuzzy_threshold"`
	SaveDir               string              `json:"save_dir"`
	Timezone              string              `json:"timezone"`
}

func Defaults() Config {
	return Config{
		BaseURL:               DefaultBaseURL,
		StartYear:             DefaultStartYear,
		EndYear:               DefaultEndYear,
		DelaySeconds:          1,
		Concurrency:           1,
		Database:              configlibsql.Struct{File: "milex_data.db"},
		RequestTimeoutSeconds: 60,
		UserAgent:             "Mozilla/5.0 (compatible; milex-scraper)",
	}
}

// Load reads `path` (and its .local override) on top of Defaults. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, Defaults())
	if err != nil {
		return Config{}, err
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is empty"))
	}
	if c.StartYear > c.EndYear {
		errs = append(errs, fmt.Errorf("start_year %d is after end_year %d", c.StartYear, c.EndYear))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.DelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("delay_seconds is negative: %v", c.DelaySeconds))
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		errs = append(errs, fmt.Errorf("fuzzy_threshold must be within [0, 1], got %v", c.FuzzyThreshold))
	}
	if c.Timezone != "" {
		_, err := time.LoadLocation(c.Timezone)
		if err != nil {
			errs = append(errs, fmt.Errorf("timezone: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Years lists the configured reporting years, oldest first.
func (c Config) Years() []int {
	return YearRange(c.StartYear, c.EndYear)
}

func YearRange(start, end int) []int {
	if start > end {
		return nil
	}
	out := make([]int, 0, end-start+1)
	for y := start; y <= end; y++ {
		out = append(out, y)
	}
	return out
}

var countryCode = regexp.MustCompile(`^[A-Z]{3}$`)

// ParseCountries validates a list of ISO alpha-3 codes, lowercase codes are
// accepted and uppercased.
func ParseCountries(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if !countryCode.MatchString(c) {
			return nil, fmt.Errorf("invalid country code %q", c)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, errors.New("no country codes")
	}
	return out, nil
}

// Countries returns the configured country list, the embedded UN member list
// when countries_file is unset.
func (c Config) Countries() ([]string, error) {
	contents := defaultCountries
	if c.CountriesFile != "" {
		var err error
		contents, err = os.ReadFile(c.CountriesFile)
		if err != nil {
			return nil, err
		}
	}
	var codes []string
	err := json5.Unmarshal(contents, &codes)
	if err != nil {
		return nil, fmt.Errorf("parse countries: %w", err)
	}
	return ParseCountries(codes)
}
