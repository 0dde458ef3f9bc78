// Package standardise turns raw line-list rows into standardised records:
// event dates are parsed and repaired, patient and case fields mapped to
// fixed vocabularies, and the place of residence resolved against the region
// hierarchy. Defects in a row never fail the row; they are reported to an
// Observer and the affected value is dropped.
package standardise

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dsih-artpark/epipipeline-v2/internal/addressparse"
	"github.com/dsih-artpark/epipipeline-v2/internal/dates"
	"github.com/dsih-artpark/epipipeline-v2/internal/demographics"
	"github.com/dsih-artpark/epipipeline-v2/internal/linelist"
	"github.com/dsih-artpark/epipipeline-v2/internal/matcher"
	"github.com/dsih-artpark/epipipeline-v2/internal/normalize"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
	"github.com/dsih-artpark/epipipeline-v2/internal/scalar"
)

// ErrInvalidOptions wraps every defect found by New.
var ErrInvalidOptions = errors.New("invalid standardise options")

// Standardiser is safe for concurrent use once built.
type Standardiser struct {
	opts       Options
	index      *regions.Index
	resolver   *matcher.Resolver
	reconciler *dates.Reconciler
	year       *dates.YearCorrector // nil when the target comes from each record
	obs        Observer
	addr       addressparse.Parser
}

// New validates opts and builds a Standardiser over idx. obs may be nil. addr
// is only consulted when opts.AddressFallback is set; nil selects
// addressparse.Default.
func New(idx *regions.Index, opts Options, obs Observer, addr addressparse.Parser) (*Standardiser, error) {
	var errs []error

	if idx == nil {
		errs = append(errs, errors.New("region index is nil"))
	}
	aliases := opts.Aliases
	if aliases == nil {
		aliases = normalize.DefaultAliases
	}
	names, err := normalize.NewNameNormalizer(aliases)
	if err != nil {
		errs = append(errs, err)
	}
	reconciler, err := dates.NewReconciler(opts.MaxGapDays, opts.Bounds)
	if err != nil {
		errs = append(errs, err)
	}
	var year *dates.YearCorrector
	if opts.TargetYear != 0 {
		if year, err = dates.NewYearCorrector(opts.TargetYear, opts.LimitYear); err != nil {
			errs = append(errs, err)
		}
	}
	if err := opts.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}
	if opts.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", opts.Workers))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
	}

	resolver, err := matcher.NewResolver(matcher.NewScopedMatcher(idx, names), opts.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if obs == nil {
		obs = NopObserver{}
	}
	if addr == nil {
		addr = addressparse.Default()
	}
	return &Standardiser{
		opts:       opts,
		index:      idx,
		resolver:   resolver,
		reconciler: reconciler,
		year:       year,
		obs:        obs,
		addr:       addr,
	}, nil
}

// At returns a Standardiser whose ceiling is the calendar date of now when
// the ceiling floats, and s itself otherwise. Everything but the date window
// is shared with s.
func (s *Standardiser) At(now time.Time) (*Standardiser, error) {
	if !s.opts.FloatingCeiling {
		return s, nil
	}
	b, err := dates.NewBounds(s.opts.Bounds.Floor, dates.Null, now)
	if err != nil {
		return nil, err
	}
	if b.Ceiling.Equal(s.opts.Bounds.Ceiling) {
		return s, nil
	}
	reconciler, err := dates.NewReconciler(s.opts.MaxGapDays, b)
	if err != nil {
		return nil, err
	}
	at := *s
	at.opts.Bounds = b
	at.reconciler = reconciler
	return &at, nil
}

// Options returns the options the Standardiser was built with.
func (s *Standardiser) Options() Options {
	return s.opts
}

// Resolver returns the location resolver.
func (s *Standardiser) Resolver() *matcher.Resolver {
	return s.resolver
}

// Reconciler returns the date reconciler.
func (s *Standardiser) Reconciler() *dates.Reconciler {
	return s.reconciler
}

// Index returns the region hierarchy.
func (s *Standardiser) Index() *regions.Index {
	return s.index
}

// Standardise processes one row.
func (s *Standardiser) Standardise(row linelist.Row) Record {
	start := time.Now()

	rec := Record{ID: recordID(row)}
	s.standardiseDates(&rec, row)
	s.standardiseCase(&rec, row)
	s.standardiseLocation(&rec, row)

	if len(s.opts.StringFields) > 0 {
		rec.Text = make(map[string]string, len(s.opts.StringFields))
		for _, col := range s.opts.StringFields {
			if v, ok := normalize.CleanText(row[col]); ok {
				rec.Text[col] = v
			}
		}
	}

	s.obs.RecordStandardised(rec.ID, time.Since(start))
	return rec
}

func recordID(row linelist.Row) string {
	if id, ok := scalar.Text(row[linelist.ColRecordID]); ok {
		return id
	}
	return uuid.NewString()
}

func (s *Standardiser) standardiseDates(rec *Record, row linelist.Row) {
	sample := s.parseDate(rec.ID, row, linelist.ColSampleCollection)
	result := s.parseDate(rec.ID, row, linelist.ColResultDate)
	symptom, ok := dates.OnsetFromDuration(row[linelist.ColSymptomOnset], sample)
	if !ok {
		symptom = s.parseDate(rec.ID, row, linelist.ColSymptomOnset)
	}

	if yc := s.yearCorrector(sample, result, symptom); yc != nil {
		symptom = s.correctYear(rec.ID, yc, linelist.ColSymptomOnset, symptom)
		sample = s.correctYear(rec.ID, yc, linelist.ColSampleCollection, sample)
		result = s.correctYear(rec.ID, yc, linelist.ColResultDate, result)
	}

	chain := s.reconciler.ReconcileChainExplain(symptom, sample, result)
	for _, step := range chain.Steps {
		s.obs.DateRepaired(rec.ID, step.Pair, step.Strategy)
	}

	rec.SymptomOnset = s.checkBounds(rec.ID, linelist.ColSymptomOnset, chain.Symptom)
	rec.SampleCollection = s.checkBounds(rec.ID, linelist.ColSampleCollection, chain.Sample)
	rec.Result = s.checkBounds(rec.ID, linelist.ColResultDate, chain.Result)
	rec.Primary = dates.First(rec.SymptomOnset, rec.SampleCollection, rec.Result)
}

func (s *Standardiser) parseDate(id string, row linelist.Row, col string) dates.Date {
	raw := row[col]
	d := dates.Parse(raw)
	if !d.Valid && !scalar.IsNA(raw) {
		s.obs.DateNullified(id, col, ReasonUnparseable)
	}
	return d
}

// yearCorrector returns the configured corrector, or one targeting the year
// of the first date of the record inside the bounds. A record with no such
// date takes the year of the ceiling.
func (s *Standardiser) yearCorrector(ds ...dates.Date) *dates.YearCorrector {
	if s.year != nil {
		return s.year
	}
	ref := s.opts.Bounds.Ceiling
	for _, d := range ds {
		if s.opts.Bounds.Contains(d) {
			ref = d
			break
		}
	}
	yc, err := dates.YearCorrectorFor(ref, s.opts.LimitYear)
	if err != nil {
		return nil
	}
	return yc
}

func (s *Standardiser) correctYear(id string, yc *dates.YearCorrector, col string, d dates.Date) dates.Date {
	out := yc.Correct(d)
	if d.Valid && !out.Valid {
		s.obs.DateNullified(id, col, ReasonInvalidDay)
	}
	return out
}

func (s *Standardiser) checkBounds(id, col string, d dates.Date) dates.Date {
	out := s.opts.Bounds.Check(d)
	if d.Valid && !out.Valid {
		s.obs.DateNullified(id, col, ReasonOutOfBounds)
	}
	return out
}

func (s *Standardiser) standardiseCase(rec *Record, row linelist.Row) {
	if age, ok := demographics.Age(row[linelist.ColAge]); ok {
		if age, ok = demographics.ValidateAge(age); ok {
			rec.Age, rec.HasAge = age, true
			rec.AgeRange, _ = demographics.AgeRange(age)
		}
	}
	rec.Gender = demographics.Gender(row[linelist.ColGender])

	rec.Test1 = demographics.TestResult(row[linelist.ColTest1Result])
	rec.Test2 = demographics.TestResult(row[linelist.ColTest2Result])
	rec.NumberOfTests = demographics.TestCount(rec.Test1, rec.Test2)

	rec.OpdIpd, _ = demographics.OpdIpd(row[linelist.ColOpdIpd])
	rec.PublicPrivate, _ = demographics.PublicPrivate(row[linelist.ColPublicPrivate])
	rec.Surveillance, _ = demographics.ActivePassive(row[linelist.ColSurveillance])
	rec.UrbanRural, _ = demographics.RuralUrban(row[linelist.ColUrbanRural])
}

func (s *Standardiser) standardiseLocation(rec *Record, row linelist.Row) {
	rec.StateID = s.opts.StateID
	if id, ok := rowID(row, linelist.ColStateID); ok {
		rec.StateID = id
	}
	districtID, _ := rowID(row, linelist.ColDistrictID)

	var mobile string
	if addr, ok := scalar.Text(row[linelist.ColAddress]); ok {
		rec.Address, mobile = addressparse.StripMobile(addr)
	}
	rec.name, _ = normalize.CleanText(row[linelist.ColName])
	rec.contact = digits(row[linelist.ColContact])
	if rec.contact == "" {
		rec.contact = digits(mobile)
	}
	village := row[linelist.ColVillageName]
	if scalar.IsNA(village) && s.opts.AddressFallback && rec.Address != "" {
		if locality, ok := s.addr.Locality(rec.Address); ok {
			village = locality
			rec.VillageFromAddress = true
		}
	}

	rec.Location = s.resolver.Resolve(matcher.Place{
		StateID:     rec.StateID,
		DistrictID:  districtID,
		District:    row[linelist.ColDistrictName],
		Subdistrict: row[linelist.ColSubdistrictName],
		Village:     village,
	})

	s.reportLocation(rec.ID, regions.LevelDistrict, rec.Location.District)
	s.reportLocation(rec.ID, regions.LevelSubdistrict, rec.Location.Subdistrict)
	s.reportLocation(rec.ID, regions.LevelVillage, rec.Location.Village)
}

// digits keeps the last ten digits of a phone number, dropping any country
// code.
func digits(v any) string {
	s, ok := scalar.Text(v)
	if !ok {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, s)
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return s
}

func rowID(row linelist.Row, col string) (regions.ID, bool) {
	t, ok := scalar.Text(row[col])
	if !ok {
		return regions.Unresolved, false
	}
	id, err := regions.ParseID(t)
	if err != nil || id.IsUnresolved() {
		return regions.Unresolved, false
	}
	return id, true
}

// reportLocation skips NA names. level is replaced by the matched level so
// that ULBs and wards are counted as such.
func (s *Standardiser) reportLocation(id string, level regions.Level, res matcher.Result) {
	if !res.HasName {
		return
	}
	if res.Matched() {
		level = res.ID.Level
	}
	s.obs.LocationResolved(id, level, res.Matched())
}
