// Package config loads run settings for the standardisation pipeline from a
// YAML file, a .env file and EPI_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dsih-artpark/epipipeline-v2/internal/dates"
	"github.com/dsih-artpark/epipipeline-v2/internal/matcher"
	"github.com/dsih-artpark/epipipeline-v2/internal/normalize"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// ErrInvalidSettings wraps every configuration defect found by Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the complete configuration of a run.
type Settings struct {
	Server   ServerSettings   `yaml:"server"`
	Database DatabaseSettings `yaml:"database"`
	Regions  RegionSettings   `yaml:"regions"`
	Dates    DateSettings     `yaml:"dates"`

	Thresholds matcher.Thresholds `yaml:"thresholds"`
	// Aliases replace the built-in district renames when set.
	Aliases []normalize.Alias `yaml:"aliases"`

	// StringFields are free-text columns cleaned and upper-cased.
	StringFields []string `yaml:"string_fields"`

	Cleanup CleanupSettings `yaml:"cleanup"`

	Workers         int    `yaml:"workers"`
	AddressFallback bool   `yaml:"address_fallback"`
	LogLevel        string `yaml:"log_level"`
}

// ServerSettings configure the HTTP API.
type ServerSettings struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`

	// AllowedOrigin is the CORS origin; empty allows any.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// DatabaseSettings locate the Postgres region table.
type DatabaseSettings struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
}

// RegionSettings select the region table source: a CSV file, or the
// database when Path is empty.
type RegionSettings struct {
	Path    string `yaml:"path"`
	StateID string `yaml:"state_id"`
}

// DateSettings configure date reconciliation.
type DateSettings struct {
	MaxGapDays int    `yaml:"max_gap_days"`
	MinDate    string `yaml:"min_date"`
	MaxDate    string `yaml:"max_date"`
	// TargetYear of zero takes the year from each record's first plausible
	// date.
	TargetYear int  `yaml:"target_year"`
	LimitYear  bool `yaml:"limit_year"`
}

// CleanupSettings select the batch steps run after every record has been
// standardised.
type CleanupSettings struct {
	Dedupe     bool `yaml:"dedupe"`
	DropSparse bool `yaml:"drop_sparse"`
	PatientIDs bool `yaml:"patient_ids"`
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	return &Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseSettings{
			MaxConnections: 20,
		},
		Regions: RegionSettings{
			StateID: "state_29",
		},
		Dates: DateSettings{
			MaxGapDays: dates.DefaultMaxGap,
		},
		Thresholds: matcher.DefaultThresholds(),
		Workers:    4,
		LogLevel:   "info",
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	}
	s.ApplyEnv()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyEnv overrides fields from EPI_* variables and DATABASE_URL.
func (s *Settings) ApplyEnv() {
	s.Server.Host = GetEnv("EPI_HOST", s.Server.Host)
	s.Server.Port = GetEnvInt("EPI_PORT", s.Server.Port)
	s.Server.APIKey = GetEnv("EPI_API_KEY", s.Server.APIKey)
	s.Server.AllowedOrigin = GetEnv("EPI_ALLOWED_ORIGIN", s.Server.AllowedOrigin)
	s.Database.URL = GetEnv("DATABASE_URL", s.Database.URL)
	s.Regions.Path = GetEnv("EPI_REGIONS_PATH", s.Regions.Path)
	s.Regions.StateID = GetEnv("EPI_STATE_ID", s.Regions.StateID)
	s.Dates.MaxGapDays = GetEnvInt("EPI_MAX_GAP_DAYS", s.Dates.MaxGapDays)
	s.Dates.MinDate = GetEnv("EPI_MIN_DATE", s.Dates.MinDate)
	s.Dates.MaxDate = GetEnv("EPI_MAX_DATE", s.Dates.MaxDate)
	s.Dates.TargetYear = GetEnvInt("EPI_TARGET_YEAR", s.Dates.TargetYear)
	s.Dates.LimitYear = GetEnvBool("EPI_LIMIT_YEAR", s.Dates.LimitYear)
	s.Workers = GetEnvInt("EPI_WORKERS", s.Workers)
	s.AddressFallback = GetEnvBool("EPI_ADDRESS_FALLBACK", s.AddressFallback)
	s.Cleanup.Dedupe = GetEnvBool("EPI_DEDUPE", s.Cleanup.Dedupe)
	s.Cleanup.DropSparse = GetEnvBool("EPI_DROP_SPARSE", s.Cleanup.DropSparse)
	s.Cleanup.PatientIDs = GetEnvBool("EPI_PATIENT_IDS", s.Cleanup.PatientIDs)
	s.LogLevel = GetEnv("EPI_LOG_LEVEL", s.LogLevel)
}

// Validate returns all configuration defects joined under ErrInvalidSettings.
func (s *Settings) Validate() error {
	var errs []error

	if err := s.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Dates.MaxGapDays < 0 {
		errs = append(errs, fmt.Errorf("dates.max_gap_days must not be negative, got %d", s.Dates.MaxGapDays))
	}
	if s.Dates.TargetYear != 0 {
		if _, err := dates.NewYearCorrector(s.Dates.TargetYear, s.Dates.LimitYear); err != nil {
			errs = append(errs, fmt.Errorf("dates.target_year: %w", err))
		}
	}
	if _, err := s.Bounds(time.Now()); err != nil {
		errs = append(errs, err)
	}
	if _, err := regions.ParseID(s.Regions.StateID); err != nil {
		errs = append(errs, fmt.Errorf("regions.state_id: %w", err))
	}
	if _, err := normalize.NewNameNormalizer(s.aliases()); err != nil {
		errs = append(errs, fmt.Errorf("aliases: %w", err))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", s.Workers))
	}
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", s.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// Bounds returns the admissible date window. An unset max date means now.
func (s *Settings) Bounds(now time.Time) (dates.Bounds, error) {
	floor, err := parseBound("dates.min_date", s.Dates.MinDate)
	if err != nil {
		return dates.Bounds{}, err
	}
	ceiling, err := parseBound("dates.max_date", s.Dates.MaxDate)
	if err != nil {
		return dates.Bounds{}, err
	}
	return dates.NewBounds(floor, ceiling, now)
}

func parseBound(field, raw string) (dates.Date, error) {
	if raw == "" {
		return dates.Null, nil
	}
	d := dates.Parse(raw)
	if !d.Valid {
		return dates.Null, fmt.Errorf("%s: cannot parse %q", field, raw)
	}
	return d, nil
}

// NameNormalizer builds the normalizer for the configured aliases.
func (s *Settings) NameNormalizer() (*normalize.NameNormalizer, error) {
	return normalize.NewNameNormalizer(s.aliases())
}

func (s *Settings) aliases() []normalize.Alias {
	if s.Aliases == nil {
		return normalize.DefaultAliases
	}
	return s.Aliases
}

// StateID returns the parsed state the records belong to.
func (s *Settings) StateID() regions.ID {
	return regions.ParseOrUnresolved(s.Regions.StateID)
}
