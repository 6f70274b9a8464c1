package sheet

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testSheet = "Automated"

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestWorkbook builds a workbook shaped like the production template: a
// mapping sheet with a header plus data rows, and named metadata cells on a
// settings sheet.
func newTestWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	_, err := f.NewSheet(testSheet)
	require.NoError(t, err)
	_, err = f.NewSheet("Settings")
	require.NoError(t, err)

	header := []string{"Sender", "Subject", "Attachment", "SaveName", "Status"}
	for col, value := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(testSheet, cell, value))
	}
	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(testSheet, cell, value))
		}
	}

	names := map[string]string{
		CellCurrentBusinessDay: "Settings!$B$1",
		CellPriorBusinessDay:   "Settings!$B$2",
		CellPrior2BusinessDay:  "Settings!$B$3",
		CellStartTime:          "Settings!$B$4",
		CellEndTime:            "Settings!$B$5",
		CellExecutionTime:      "Settings!$B$6",
	}
	for name, ref := range names {
		require.NoError(t, f.SetDefinedName(&excelize.DefinedName{Name: name, RefersTo: ref}))
	}

	path := filepath.Join(t.TempDir(), "rules.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestOpenMissingSheet(t *testing.T) {
	path := newTestWorkbook(t, nil)

	_, err := Open(path, "NoSuchSheet", quietLogger())
	assert.Error(t, err)
}

func TestRowsReturnsHeaderAndData(t *testing.T) {
	path := newTestWorkbook(t, [][]string{
		{"a@x.com", "report", "*.csv", "daily.csv", "Saved"},
		{"b@y.com", "weekly", "*.pdf", "weekly.pdf", ""},
	})

	wb, err := Open(path, testSheet, quietLogger())
	require.NoError(t, err)
	defer wb.Close()

	header, rows, err := wb.Rows()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sender", "Subject", "Attachment", "SaveName", "Status"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "a@x.com", rows[0][0])
	assert.Equal(t, "Saved", rows[0][4])
}

func TestSetStatusPersists(t *testing.T) {
	path := newTestWorkbook(t, [][]string{
		{"a@x.com", "report", "*.csv", "daily.csv", ""},
	})

	wb, err := Open(path, testSheet, quietLogger())
	require.NoError(t, err)

	require.NoError(t, wb.SetStatus(0, "Saved"))
	require.NoError(t, wb.Save())
	require.NoError(t, wb.Close())

	reopened, err := Open(path, testSheet, quietLogger())
	require.NoError(t, err)
	defer reopened.Close()

	_, rows, err := reopened.Rows()
	require.NoError(t, err)
	assert.Equal(t, "Saved", rows[0][4])
}

func TestResetStatusClearsEveryDataRow(t *testing.T) {
	path := newTestWorkbook(t, [][]string{
		{"a@x.com", "report", "*.csv", "daily.csv", "Saved"},
		{"b@y.com", "weekly", "*.pdf", "weekly.pdf", "Saved"},
		{"c@z.com", "monthly", "*.xlsx", "monthly.xlsx", ""},
	})

	wb, err := Open(path, testSheet, quietLogger())
	require.NoError(t, err)
	defer wb.Close()

	cleared, err := wb.ResetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, cleared)

	_, rows, err := wb.Rows()
	require.NoError(t, err)
	for _, row := range rows {
		if len(row) >= 5 {
			assert.Equal(t, "", row[4])
		}
	}
}

func TestNamedValues(t *testing.T) {
	path := newTestWorkbook(t, nil)

	wb, err := Open(path, testSheet, quietLogger())
	require.NoError(t, err)
	defer wb.Close()

	require.NoError(t, wb.SetNamedValue(CellCurrentBusinessDay, "2024-01-05"))
	value, err := wb.GetNamedValue(CellCurrentBusinessDay)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", value)

	err = wb.SetNamedValue("No_Such_Name", "x")
	assert.Error(t, err)
}

func TestStampStartAndEnd(t *testing.T) {
	path := newTestWorkbook(t, nil)

	wb, err := Open(path, testSheet, quietLogger())
	require.NoError(t, err)
	defer wb.Close()

	start := time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC)
	cbd := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	pbd := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	p2bd := time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC)

	wb.StampStart(cbd, pbd, p2bd, start)
	wb.StampEnd(start.Add(95*time.Second+500*time.Millisecond), 95*time.Second+500*time.Millisecond)

	for name, expected := range map[string]string{
		CellCurrentBusinessDay: "2024-01-08",
		CellPriorBusinessDay:   "2024-01-05",
		CellPrior2BusinessDay:  "2024-01-04",
		CellStartTime:          "2024-01-08 09:30:00",
		CellEndTime:            "2024-01-08 09:31:35",
		CellExecutionTime:      "1m35s",
	} {
		value, err := wb.GetNamedValue(name)
		require.NoError(t, err)
		assert.Equal(t, expected, value, name)
	}
}

func TestSplitRef(t *testing.T) {
	tests := []struct {
		ref   string
		sheet string
		cell  string
		ok    bool
	}{
		{"Settings!$B$2", "Settings", "B2", true},
		{"'My Sheet'!$A$1", "My Sheet", "A1", true},
		{"Settings!$B$2:$B$4", "Settings", "B2", true},
		{"NoBang", "", "", false},
	}

	for _, tt := range tests {
		sheetName, cell, err := splitRef(tt.ref)
		if !tt.ok {
			assert.Error(t, err, tt.ref)
			continue
		}
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.sheet, sheetName)
		assert.Equal(t, tt.cell, cell)
	}
}
