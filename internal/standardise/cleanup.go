package standardise

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dsih-artpark/epipipeline-v2/internal/demographics"
	"github.com/dsih-artpark/epipipeline-v2/internal/linelist"
)

// MinKeyFields is the number of key fields a record needs to survive
// DropSparse. The key fields are name or address, primary date, age and
// gender.
const MinKeyFields = 2

// Removed counts the records dropped by Cleanup.
type Removed struct {
	Duplicates int
	Sparse     int
}

// Cleanup runs the batch steps selected in Options.Cleanup, in order:
// de-duplication, dropping sparse records, then patient ids.
func (s *Standardiser) Cleanup(records []Record) ([]Record, Removed) {
	var removed Removed
	c := s.opts.Cleanup
	if c.Dedupe {
		n := len(records)
		records = Dedupe(records)
		removed.Duplicates = n - len(records)
	}
	if c.DropSparse {
		n := len(records)
		records = DropSparse(records)
		removed.Sparse = n - len(records)
	}
	if c.PatientIDs {
		AssignPatientIDs(records)
	}
	return records, removed
}

// Dedupe keeps the first of records that are identical in every standardised
// column and in the patient's name and contact. Record and patient ids are
// ignored, since they are generated per row.
func Dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key := contentKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func contentKey(r Record) string {
	row := r.Row()
	delete(row, linelist.ColRecordID)
	delete(row, linelist.ColPatientID)

	var b strings.Builder
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	for _, col := range cols {
		fmt.Fprintf(&b, "%s=%s\x1f", col, linelist.Cell(row[col]))
	}
	fmt.Fprintf(&b, "name=%s\x1fcontact=%s", r.name, r.contact)
	return b.String()
}

// DropSparse removes records with fewer than MinKeyFields key fields.
func DropSparse(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if keyFields(r) >= MinKeyFields {
			out = append(out, r)
		}
	}
	return out
}

func keyFields(r Record) int {
	n := 0
	if r.name != "" || r.Address != "" {
		n++
	}
	if r.Primary.Valid {
		n++
	}
	if r.HasAge {
		n++
	}
	if r.Gender != "" && r.Gender != demographics.GenderUnknown {
		n++
	}
	return n
}

// AssignPatientIDs gives records of the same patient one shared random id.
// Records match on name, contact, gender, address and age.
func AssignPatientIDs(records []Record) {
	ids := make(map[patientKey]string)
	for i := range records {
		k := newPatientKey(records[i])
		id, ok := ids[k]
		if !ok {
			id = uuid.NewString()
			ids[k] = id
		}
		records[i].PatientID = id
	}
}

type patientKey struct {
	name, contact, gender, address, age string
}

func newPatientKey(r Record) patientKey {
	k := patientKey{
		name:    r.name,
		contact: r.contact,
		gender:  r.Gender,
		address: strings.ToUpper(r.Address),
	}
	if r.HasAge {
		k.age = fmt.Sprintf("%g", r.Age)
	}
	return k
}
