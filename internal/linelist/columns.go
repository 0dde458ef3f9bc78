// Package linelist reads raw line-list sheets into rows keyed by standard
// column name and writes standardised rows back out as CSV.
package linelist

// Row is one line-list record keyed by column name. Values are whatever the
// source produced: strings from CSV and XLSX, typed values from JSON.
type Row map[string]any

// Standard column names.
const (
	ColRecordID         = "metadata.recordID"
	ColPatientID        = "metadata.patientID"
	ColPrimaryDate      = "metadata.primaryDate"
	ColSymptomOnset     = "event.symptomOnsetDate"
	ColSampleCollection = "event.test.sampleCollectionDate"
	ColResultDate       = "event.test.resultDate"
	ColTest1Result      = "event.test.test1.result"
	ColTest2Result      = "event.test.test2.result"
	ColNumberOfTests    = "event.test.numberOfTests"
	ColAge              = "demographics.age"
	ColAgeRange         = "demographics.ageRange"
	ColGender           = "demographics.gender"
	ColOpdIpd           = "case.opdOrIpd"
	ColPublicPrivate    = "case.publicOrPrivate"
	ColSurveillance     = "case.surveillance"
	ColUrbanRural       = "case.urbanOrRural"
	ColStateID          = "location.admin1.ID"
	ColDistrictName     = "location.admin2.name"
	ColDistrictID       = "location.admin2.ID"
	ColSubdistrictName  = "location.admin3.name"
	ColSubdistrictID    = "location.admin3.ID"
	ColVillageName      = "location.admin5.name"
	ColVillageID        = "location.admin5.ID"
	ColAddress          = "location.addressLine1"
	ColHierarchy        = "location.admin.hierarchy"
	ColCoarseness       = "location.admin.coarseness"
)

// Identifying input columns. They are read to group records by patient and
// are never written out.
const (
	ColName    = "metadata.name"
	ColContact = "metadata.contact"
)

// Columns is the output column order of a standardised line-list.
var Columns = []string{
	ColRecordID,
	ColPatientID,
	ColPrimaryDate,
	ColSymptomOnset,
	ColSampleCollection,
	ColResultDate,
	ColTest1Result,
	ColTest2Result,
	ColNumberOfTests,
	ColAge,
	ColAgeRange,
	ColGender,
	ColOpdIpd,
	ColPublicPrivate,
	ColSurveillance,
	ColUrbanRural,
	ColStateID,
	ColDistrictName,
	ColDistrictID,
	ColSubdistrictName,
	ColSubdistrictID,
	ColVillageName,
	ColVillageID,
	ColAddress,
	ColHierarchy,
	ColCoarseness,
}
