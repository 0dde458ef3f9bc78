package linelist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dsih-artpark/epipipeline-v2/internal/dates"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffmetadata.recordID,event.symptomOnsetDate,location.admin2.name\n" +
		"r1,15-03-2023,RAICHUR\n" +
		"r2,,Bidar\n" +
		",,\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "r1", rows[0][ColRecordID])
	assert.Equal(t, "15-03-2023", rows[0][ColSymptomOnset])
	_, ok := rows[1][ColSymptomOnset]
	assert.False(t, ok, "blank cells are left out")
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{ColRecordID, ColSampleCollection}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"r1", 45000}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := ReadXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r1", rows[0][ColRecordID])
	assert.True(t, dates.Parse(rows[0][ColSampleCollection]).Equal(dates.New(2023, 3, 15)))
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{
			ColRecordID:     "r1",
			ColSymptomOnset: dates.New(2023, 3, 15),
			ColResultDate:   dates.Null,
			ColDistrictID:   regions.Unresolved,
			ColAge:          25.5,
		},
	}
	cols := []string{ColRecordID, ColSymptomOnset, ColResultDate, ColDistrictID, ColAge, ColGender}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cols, rows))

	want := strings.Join(cols, ",") + "\n" +
		"r1,2023-03-15T00:00:00Z,,admin_0,25.5,\n"
	assert.Equal(t, want, buf.String())
}

func TestCell(t *testing.T) {
	assert.Equal(t, "", Cell(nil))
	assert.Equal(t, "3", Cell(3))
	assert.Equal(t, "2", Cell(2.0))
	assert.Equal(t, "district_546", Cell(regions.MustParseID("district_546")))
}
