package standardise

import (
	"github.com/dsih-artpark/epipipeline-v2/internal/dates"
	"github.com/dsih-artpark/epipipeline-v2/internal/linelist"
	"github.com/dsih-artpark/epipipeline-v2/internal/matcher"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// Record is one standardised row. Empty strings, null dates and unresolved
// ids stand for NA.
type Record struct {
	ID string
	// PatientID is only set by AssignPatientIDs.
	PatientID string

	SymptomOnset     dates.Date
	SampleCollection dates.Date
	Result           dates.Date
	Primary          dates.Date

	Age           float64
	HasAge        bool
	AgeRange      string
	Gender        string
	Test1         string
	Test2         string
	NumberOfTests int

	OpdIpd        string
	PublicPrivate string
	Surveillance  string
	UrbanRural    string

	StateID            regions.ID
	Location           matcher.Location
	Address            string
	VillageFromAddress bool

	// Text holds the cleaned free-text columns; NA values are absent.
	Text map[string]string

	// name and contact identify the patient. They are not part of Row.
	name    string
	contact string
}

// Columns returns the output columns followed by the extra free-text
// columns.
func Columns(extra []string) []string {
	cols := make([]string, 0, len(linelist.Columns)+len(extra))
	cols = append(cols, linelist.Columns...)
	return append(cols, extra...)
}

// Row renders the record keyed by standard column name, NA as nil.
func (r Record) Row() linelist.Row {
	row := linelist.Row{
		linelist.ColRecordID:         r.ID,
		linelist.ColPatientID:        optional(r.PatientID),
		linelist.ColPrimaryDate:      r.Primary,
		linelist.ColSymptomOnset:     r.SymptomOnset,
		linelist.ColSampleCollection: r.SampleCollection,
		linelist.ColResultDate:       r.Result,
		linelist.ColTest1Result:      r.Test1,
		linelist.ColTest2Result:      r.Test2,
		linelist.ColNumberOfTests:    r.NumberOfTests,
		linelist.ColAgeRange:         optional(r.AgeRange),
		linelist.ColGender:           r.Gender,
		linelist.ColOpdIpd:           optional(r.OpdIpd),
		linelist.ColPublicPrivate:    optional(r.PublicPrivate),
		linelist.ColSurveillance:     optional(r.Surveillance),
		linelist.ColUrbanRural:       optional(r.UrbanRural),
		linelist.ColStateID:          r.StateID,
		linelist.ColDistrictName:     name(r.Location.District),
		linelist.ColDistrictID:       r.Location.District.ID,
		linelist.ColSubdistrictName:  name(r.Location.Subdistrict),
		linelist.ColSubdistrictID:    r.Location.Subdistrict.ID,
		linelist.ColVillageName:      name(r.Location.Village),
		linelist.ColVillageID:        r.Location.Village.ID,
		linelist.ColAddress:          optional(r.Address),
		linelist.ColHierarchy:        string(r.Location.Branch),
		linelist.ColCoarseness:       string(r.Location.Coarseness),
	}
	row[linelist.ColAge] = nil
	if r.HasAge {
		row[linelist.ColAge] = r.Age
	}
	for col, v := range r.Text {
		row[col] = v
	}
	return row
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func name(res matcher.Result) any {
	if !res.HasName {
		return nil
	}
	return res.Name
}
