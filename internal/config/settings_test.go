package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsih-artpark/epipipeline-v2/internal/dates"
	"github.com/dsih-artpark/epipipeline-v2/internal/matcher"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, matcher.DefaultThresholds(), s.Thresholds)
	assert.Equal(t, dates.DefaultMaxGap, s.Dates.MaxGapDays)
	assert.Equal(t, regions.MustParseID("state_29"), s.StateID())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "settings.yaml", `
regions:
  path: regions.csv
  state_id: state_21
dates:
  max_gap_days: 30
  min_date: "2023-01-01"
  target_year: 2023
thresholds:
  district: 70
  subdistrict: 65
  ulb: 65
  village: 90
  ward: 95
aliases:
  - pattern: cuttack
    replacement: Kataka
    levels: [district]
string_fields: [event.test.facility]
cleanup:
  dedupe: true
  patient_ids: true
workers: 8
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "regions.csv", s.Regions.Path)
	assert.Equal(t, 30, s.Dates.MaxGapDays)
	assert.Equal(t, 70, s.Thresholds.District)
	assert.Equal(t, 90, s.Thresholds.Village)
	assert.Equal(t, 8, s.Workers)
	assert.Equal(t, []string{"event.test.facility"}, s.StringFields)
	assert.Equal(t, CleanupSettings{Dedupe: true, PatientIDs: true}, s.Cleanup)
	require.Len(t, s.Aliases, 1)
	assert.Equal(t, []regions.Level{regions.LevelDistrict}, s.Aliases[0].Levels)

	n, err := s.NameNormalizer()
	require.NoError(t, err)
	got, _ := n.Normalize("CUTTACK", regions.LevelDistrict)
	assert.Equal(t, "Kataka", got)

	b, err := s.Bounds(time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, b.Floor.Equal(dates.New(2023, 1, 1)))
	assert.True(t, b.Ceiling.Equal(dates.New(2023, 9, 1)))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EPI_WORKERS", "2")
	t.Setenv("EPI_MAX_GAP_DAYS", "15")
	t.Setenv("EPI_LIMIT_YEAR", "yes")
	t.Setenv("DATABASE_URL", "postgres://localhost/epi")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Workers)
	assert.Equal(t, 15, s.Dates.MaxGapDays)
	assert.True(t, s.Dates.LimitYear)
	assert.Equal(t, "postgres://localhost/epi", s.Database.URL)
}

func TestValidateCollectsEveryDefect(t *testing.T) {
	s := Default()
	s.Thresholds.Ward = 150
	s.Dates.MaxGapDays = -1
	s.Dates.TargetYear = 20
	s.Dates.MinDate = "2024-01-01"
	s.Dates.MaxDate = "2023-01-01"
	s.Regions.StateID = "karnataka"
	s.Workers = 0

	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.ErrorIs(t, err, matcher.ErrInvalidThreshold)
	assert.ErrorIs(t, err, dates.ErrInvalidYear)
	assert.ErrorIs(t, err, dates.ErrInvalidBounds)
	assert.ErrorIs(t, err, regions.ErrInvalidID)
	assert.Contains(t, err.Error(), "max_gap_days")
	assert.Contains(t, err.Error(), "workers")
}

func TestValidateRejectsBadDate(t *testing.T) {
	s := Default()
	s.Dates.MinDate = "sometime"
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "# comment\nEPI_TEST_KEY=from-file\nexport EPI_TEST_QUOTED=\"quoted\"\nnot a pair\n")
	t.Setenv("EPI_TEST_KEY", "")
	t.Setenv("EPI_TEST_QUOTED", "")

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "from-file", os.Getenv("EPI_TEST_KEY"))
	assert.Equal(t, "quoted", os.Getenv("EPI_TEST_QUOTED"))
}

func TestLoadEnvKeepsExisting(t *testing.T) {
	path := writeFile(t, ".env", "EPI_TEST_KEEP=file\n")
	t.Setenv("EPI_TEST_KEEP", "process")

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "process", os.Getenv("EPI_TEST_KEEP"))
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("EPI_TEST_INT", "12")
	t.Setenv("EPI_TEST_BAD_INT", "twelve")
	t.Setenv("EPI_TEST_BOOL", "off")

	assert.Equal(t, 12, GetEnvInt("EPI_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("EPI_TEST_BAD_INT", 1))
	assert.False(t, GetEnvBool("EPI_TEST_BOOL", true))
	assert.Equal(t, "fallback", GetEnv("EPI_TEST_UNSET_KEY", "fallback"))
}
