package standardise

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsih-artpark/epipipeline-v2/internal/dates"
	"github.com/dsih-artpark/epipipeline-v2/internal/linelist"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

const testRegions = `regionID,regionName,parentID
state_29,Karnataka,
district_546,Raichur,state_29
district_572,Bengaluru Urban,state_29
subdistrict_5501,Sindhnur,district_546
ulb_802,Raichur City Municipal Council,district_546
village_600001,Gorebal,subdistrict_5501
ward_11,Ward 11,ulb_802
`

type event struct {
	kind, recordID, a, b string
}

type recorder struct {
	mu     sync.Mutex
	events []event
	timed  int
}

func (r *recorder) add(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) DateRepaired(id, pair, strategy string) {
	r.add(event{"repaired", id, pair, strategy})
}

func (r *recorder) DateNullified(id, field, reason string) {
	r.add(event{"nullified", id, field, reason})
}

func (r *recorder) LocationResolved(id string, level regions.Level, resolved bool) {
	r.add(event{"location", id, string(level), fmt.Sprint(resolved)})
}

func (r *recorder) RecordStandardised(string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timed++
}

func (r *recorder) of(kind string) []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event
	for _, e := range r.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func testIndex(t *testing.T) *regions.Index {
	t.Helper()
	nodes, err := regions.ReadCSV(strings.NewReader(testRegions))
	require.NoError(t, err)
	idx, err := regions.NewIndex(nodes)
	require.NoError(t, err)
	return idx
}

func testOptions(t *testing.T) Options {
	t.Helper()
	opts := DefaultOptions(time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC))
	opts.StateID = regions.MustParseID("state_29")
	opts.Workers = 4
	return opts
}

func newTestStandardiser(t *testing.T, opts Options) (*Standardiser, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := New(testIndex(t), opts, rec, nil)
	require.NoError(t, err)
	return s, rec
}

func TestStandardiseRecord(t *testing.T) {
	s, obs := newTestStandardiser(t, testOptions(t))

	r := s.Standardise(linelist.Row{
		linelist.ColRecordID:         "r1",
		linelist.ColSymptomOnset:     "5 days",
		linelist.ColSampleCollection: "10-03-2023",
		linelist.ColResultDate:       "2023-03-12",
		linelist.ColAge:              "25 yrs",
		linelist.ColGender:           "F",
		linelist.ColTest1Result:      "Positive",
		linelist.ColOpdIpd:           "ipd",
		linelist.ColUrbanRural:       "Urban",
		linelist.ColDistrictName:     "RAICHUR",
		linelist.ColSubdistrictName:  "sindhnur",
		linelist.ColVillageName:      "gorebal",
		linelist.ColAddress:          "H No 4, Gorebal, 9876543210",
	})

	assert.Equal(t, "r1", r.ID)
	assert.True(t, r.SymptomOnset.Equal(dates.New(2023, 3, 5)))
	assert.True(t, r.SampleCollection.Equal(dates.New(2023, 3, 10)))
	assert.True(t, r.Result.Equal(dates.New(2023, 3, 12)))
	assert.True(t, r.Primary.Equal(r.SymptomOnset))

	assert.True(t, r.HasAge)
	assert.Equal(t, 25.0, r.Age)
	assert.Equal(t, "(18, 25]", r.AgeRange)
	assert.Equal(t, "FEMALE", r.Gender)
	assert.Equal(t, "POSITIVE", r.Test1)
	assert.Equal(t, "UNKNOWN", r.Test2)
	assert.Equal(t, 1, r.NumberOfTests)
	assert.Equal(t, "IPD", r.OpdIpd)
	assert.Equal(t, "URBAN", r.UrbanRural)
	assert.Empty(t, r.Surveillance)

	assert.Equal(t, "district_546", r.Location.District.ID.String())
	assert.Equal(t, "subdistrict_5501", r.Location.Subdistrict.ID.String())
	assert.Equal(t, "village_600001", r.Location.Village.ID.String())
	assert.Equal(t, regions.BranchRevenue, r.Location.Branch)
	assert.Equal(t, regions.LevelVillage, r.Location.Coarseness)
	assert.Equal(t, "H No 4, Gorebal,", r.Address)

	assert.Empty(t, obs.of("repaired"))
	assert.Empty(t, obs.of("nullified"))
	assert.Len(t, obs.of("location"), 3)
	assert.Equal(t, 1, obs.timed)
}

func TestStandardiseRepairsTransposedDate(t *testing.T) {
	s, obs := newTestStandardiser(t, testOptions(t))

	r := s.Standardise(linelist.Row{
		linelist.ColRecordID:         "r2",
		linelist.ColSymptomOnset:     "05-02-2023",
		linelist.ColSampleCollection: "02-06-2023",
	})

	assert.True(t, r.SampleCollection.Equal(dates.New(2023, 2, 6)))
	assert.Equal(t, []event{{"repaired", "r2", "symptom-sample", "late-day-is-early-month"}}, obs.of("repaired"))
}

func TestStandardiseNullifiesDates(t *testing.T) {
	opts := testOptions(t)
	opts.Bounds = dates.Bounds{Floor: dates.New(2023, 1, 1), Ceiling: dates.New(2023, 6, 30)}
	s, obs := newTestStandardiser(t, opts)

	r := s.Standardise(linelist.Row{
		linelist.ColRecordID:     "r3",
		linelist.ColSymptomOnset: "sometime",
		linelist.ColResultDate:   "2023-09-01",
	})

	assert.False(t, r.SymptomOnset.Valid)
	assert.False(t, r.Result.Valid)
	assert.False(t, r.Primary.Valid)
	assert.ElementsMatch(t, []event{
		{"nullified", "r3", linelist.ColSymptomOnset, ReasonUnparseable},
		{"nullified", "r3", linelist.ColResultDate, ReasonOutOfBounds},
	}, obs.of("nullified"))
}

func TestStandardiseTargetYear(t *testing.T) {
	opts := testOptions(t)
	opts.TargetYear = 2023
	s, obs := newTestStandardiser(t, opts)

	r := s.Standardise(linelist.Row{
		linelist.ColRecordID:         "r4",
		linelist.ColSymptomOnset:     "29-02-2024",
		linelist.ColSampleCollection: "2022-03-04",
	})

	assert.False(t, r.SymptomOnset.Valid)
	assert.True(t, r.SampleCollection.Equal(dates.New(2023, 3, 4)))
	assert.Equal(t, []event{{"nullified", "r4", linelist.ColSymptomOnset, ReasonInvalidDay}}, obs.of("nullified"))
}

func TestStandardiseGeneratesRecordID(t *testing.T) {
	s, _ := newTestStandardiser(t, testOptions(t))

	r := s.Standardise(linelist.Row{linelist.ColDistrictName: "Raichur"})
	_, err := uuid.Parse(r.ID)
	assert.NoError(t, err)
}

func TestStandardiseAddressFallback(t *testing.T) {
	row := linelist.Row{
		linelist.ColRecordID:        "r5",
		linelist.ColDistrictName:    "Raichur",
		linelist.ColSubdistrictName: "Sindhnur",
		linelist.ColAddress:         "Gorebal village, Sindhnur Tq, Raichur Dist",
	}

	s, _ := newTestStandardiser(t, testOptions(t))
	r := s.Standardise(row)
	assert.False(t, r.Location.Village.HasName)
	assert.True(t, r.Location.Village.ID.IsUnresolved())
	assert.Equal(t, regions.LevelSubdistrict, r.Location.Coarseness)

	opts := testOptions(t)
	opts.AddressFallback = true
	s, _ = newTestStandardiser(t, opts)
	r = s.Standardise(row)
	assert.True(t, r.VillageFromAddress)
	assert.Equal(t, "village_600001", r.Location.Village.ID.String())
}

func TestStandardiseKnownIDs(t *testing.T) {
	s, _ := newTestStandardiser(t, testOptions(t))

	r := s.Standardise(linelist.Row{
		linelist.ColStateID:         "state_29",
		linelist.ColDistrictID:      "district_546",
		linelist.ColSubdistrictName: "Raichur City Municipal Council",
		linelist.ColVillageName:     "ward 11",
	})
	assert.Equal(t, "Raichur", r.Location.District.Name)
	assert.Equal(t, "ulb_802", r.Location.Subdistrict.ID.String())
	assert.Equal(t, "ward_11", r.Location.Village.ID.String())
	assert.Equal(t, regions.BranchULB, r.Location.Branch)
}

func TestStandardiseStringFields(t *testing.T) {
	opts := testOptions(t)
	opts.StringFields = []string{"event.test.facility", "case.notes"}
	s, _ := newTestStandardiser(t, opts)

	r := s.Standardise(linelist.Row{
		"event.test.facility": "phc, raichur",
		"case.notes":          "1234",
	})
	assert.Equal(t, map[string]string{"event.test.facility": "PHC RAICHUR"}, r.Text)

	row := r.Row()
	assert.Equal(t, "PHC RAICHUR", row["event.test.facility"])
	assert.Contains(t, Columns(opts.StringFields), "case.notes")
}

func TestRecordRow(t *testing.T) {
	s, _ := newTestStandardiser(t, testOptions(t))

	row := s.Standardise(linelist.Row{
		linelist.ColRecordID:     "r6",
		linelist.ColDistrictName: "xyzqqq",
	}).Row()

	assert.Equal(t, "r6", row[linelist.ColRecordID])
	assert.Nil(t, row[linelist.ColAge])
	assert.Nil(t, row[linelist.ColAgeRange])
	assert.Equal(t, "Xyzqqq", row[linelist.ColDistrictName])
	assert.Equal(t, regions.Unresolved, row[linelist.ColDistrictID])
	assert.Nil(t, row[linelist.ColVillageName])
	assert.Equal(t, "admin_0", linelist.Cell(row[linelist.ColDistrictID]))
	assert.Equal(t, "", linelist.Cell(row[linelist.ColPrimaryDate]))
}

func TestRunPreservesOrder(t *testing.T) {
	s, obs := newTestStandardiser(t, testOptions(t))

	rows := make([]linelist.Row, 50)
	for i := range rows {
		rows[i] = linelist.Row{
			linelist.ColRecordID:     fmt.Sprintf("r%d", i),
			linelist.ColDistrictName: "Raichur",
		}
	}

	records, err := s.Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, records, len(rows))
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("r%d", i), r.ID)
	}
	assert.Equal(t, len(rows), obs.timed)

	sum := Summarise(records)
	assert.Equal(t, 50, sum.Total)
	assert.Equal(t, 50, sum.DistrictResolved)
	assert.Equal(t, 0, sum.WithPrimaryDate)
	assert.Equal(t, 50, sum.ByCoarseness[regions.LevelDistrict])
}

func TestRunCancelled(t *testing.T) {
	s, _ := newTestStandardiser(t, testOptions(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx, []linelist.Row{{}, {}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsBadOptions(t *testing.T) {
	opts := testOptions(t)
	opts.Workers = 0
	opts.MaxGapDays = -1
	opts.Thresholds.Village = 101

	_, err := New(testIndex(t), opts, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.ErrorIs(t, err, dates.ErrInvalidGap)
	assert.Contains(t, err.Error(), "workers")

	_, err = New(nil, testOptions(t), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestStandardiseYearFromPlausibleDate(t *testing.T) {
	s, obs := newTestStandardiser(t, testOptions(t))

	r := s.Standardise(linelist.Row{
		linelist.ColRecordID:         "r7",
		linelist.ColSymptomOnset:     "01-05-2023",
		linelist.ColSampleCollection: "05-05-2203",
		linelist.ColResultDate:       "07-05-2023",
	})

	assert.True(t, r.SymptomOnset.Equal(dates.New(2023, 5, 1)))
	assert.True(t, r.SampleCollection.Equal(dates.New(2023, 5, 5)))
	assert.True(t, r.Result.Equal(dates.New(2023, 5, 7)))
	assert.Empty(t, obs.of("nullified"))
}

func TestStandardiseYearFromCeiling(t *testing.T) {
	opts := testOptions(t)
	opts.Bounds = dates.Bounds{Floor: dates.New(2023, 1, 1), Ceiling: dates.New(2023, 12, 31)}
	s, _ := newTestStandardiser(t, opts)

	r := s.Standardise(linelist.Row{linelist.ColSampleCollection: "10-04-2021"})
	assert.True(t, r.SampleCollection.Equal(dates.New(2023, 4, 10)))
}

func TestStandardiserAt(t *testing.T) {
	opts := testOptions(t)
	opts.FloatingCeiling = true
	s, _ := newTestStandardiser(t, opts)

	at, err := s.At(time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, at.Options().Bounds.Ceiling.Equal(dates.New(2024, 1, 10)))
	assert.True(t, at.Reconciler().Bounds().Ceiling.Equal(dates.New(2024, 1, 10)))
	assert.True(t, s.Options().Bounds.Ceiling.Equal(dates.New(2023, 12, 31)))

	r := at.Standardise(linelist.Row{linelist.ColSampleCollection: "05-01-2024"})
	assert.True(t, r.SampleCollection.Equal(dates.New(2024, 1, 5)))

	same, err := s.At(time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Same(t, s, same)

	fixed, _ := newTestStandardiser(t, testOptions(t))
	same, err = fixed.At(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Same(t, fixed, same)

	opts.Bounds.Floor = dates.New(2023, 6, 1)
	s, _ = newTestStandardiser(t, opts)
	_, err = s.At(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, dates.ErrInvalidBounds)
}

func cleanupRows() []linelist.Row {
	return []linelist.Row{
		{
			linelist.ColRecordID:         "a",
			linelist.ColName:             "Ravi Kumar",
			linelist.ColContact:          "98765 43210",
			linelist.ColGender:           "Male",
			linelist.ColAge:              "30",
			linelist.ColSampleCollection: "10-03-2023",
			linelist.ColDistrictName:     "Raichur",
		},
		{
			linelist.ColRecordID:         "b",
			linelist.ColName:             "Ravi Kumar",
			linelist.ColContact:          "98765 43210",
			linelist.ColGender:           "Male",
			linelist.ColAge:              "30",
			linelist.ColSampleCollection: "10-03-2023",
			linelist.ColDistrictName:     "Raichur",
		},
		{
			linelist.ColRecordID:         "c",
			linelist.ColName:             "ravi  kumar",
			linelist.ColContact:          "+91 9876543210",
			linelist.ColGender:           "Male",
			linelist.ColAge:              "30",
			linelist.ColSampleCollection: "12-03-2023",
			linelist.ColDistrictName:     "Raichur",
		},
		{
			linelist.ColRecordID:     "d",
			linelist.ColDistrictName: "Raichur",
		},
		{
			linelist.ColRecordID: "e",
			linelist.ColGender:   "F",
			linelist.ColAge:      "40",
		},
	}
}

func TestCleanup(t *testing.T) {
	opts := testOptions(t)
	opts.Cleanup.Dedupe = true
	opts.Cleanup.DropSparse = true
	opts.Cleanup.PatientIDs = true
	s, _ := newTestStandardiser(t, opts)

	records, err := s.Run(context.Background(), cleanupRows())
	require.NoError(t, err)

	out, removed := s.Cleanup(records)
	assert.Equal(t, Removed{Duplicates: 1, Sparse: 1}, removed)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
	assert.Equal(t, "e", out[2].ID)

	_, err = uuid.Parse(out[0].PatientID)
	require.NoError(t, err)
	assert.Equal(t, out[0].PatientID, out[1].PatientID, "same name, contact, gender and age")
	assert.NotEqual(t, out[0].PatientID, out[2].PatientID)

	row := out[0].Row()
	assert.Equal(t, out[0].PatientID, row[linelist.ColPatientID])
	assert.NotContains(t, row, linelist.ColName)
	assert.NotContains(t, row, linelist.ColContact)
}

func TestCleanupDisabled(t *testing.T) {
	s, _ := newTestStandardiser(t, testOptions(t))

	records, err := s.Run(context.Background(), cleanupRows())
	require.NoError(t, err)

	out, removed := s.Cleanup(records)
	assert.Len(t, out, 5)
	assert.Zero(t, removed)
	for _, r := range out {
		assert.Empty(t, r.PatientID)
		assert.Nil(t, r.Row()[linelist.ColPatientID])
	}
}

func TestDedupeIgnoresIDs(t *testing.T) {
	a := Record{ID: "a", Gender: "MALE", PatientID: "p1"}
	b := Record{ID: "b", Gender: "MALE", PatientID: "p2"}
	c := Record{ID: "c", Gender: "MALE", name: "RAVI"}

	out := Dedupe([]Record{a, b, c})
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
}
