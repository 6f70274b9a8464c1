package sheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Named cells stamped with run metadata, defined in the workbook template.
const (
	CellCurrentBusinessDay = "CBD"
	CellPriorBusinessDay   = "PBD"
	CellPrior2BusinessDay  = "P2BD"
	CellStartTime          = "Start_Time"
	CellEndTime            = "End_Time"
	CellExecutionTime      = "Execution_Time"
)

const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04:05"
)

// Workbook wraps the Excel file holding the mapping sheet and the named
// metadata cells. The process owns the file exclusively for the run.
type Workbook struct {
	file   *excelize.File
	path   string
	sheet  string
	logger *logrus.Logger
}

// Open opens the workbook and verifies the mapping sheet exists.
func Open(path, sheetName string, logger *logrus.Logger) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	index, err := file.GetSheetIndex(sheetName)
	if err != nil || index < 0 {
		file.Close() //nolint:errcheck
		return nil, fmt.Errorf("mapping sheet not found: %s", sheetName)
	}

	logger.WithField("path", path).Info("Workbook loaded")
	return &Workbook{
		file:   file,
		path:   path,
		sheet:  sheetName,
		logger: logger,
	}, nil
}

// Close releases the workbook handle without saving.
func (w *Workbook) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// Rows returns the header row and all data rows of the mapping sheet.
func (w *Workbook) Rows() ([]string, [][]string, error) {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", w.sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s has no header row", w.sheet)
	}
	return rows[0], rows[1:], nil
}

// statusColumn locates the status column in the header row, one-based.
func (w *Workbook) statusColumn() (int, error) {
	header, _, err := w.Rows()
	if err != nil {
		return 0, err
	}
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "status") {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("sheet %s has no status column", w.sheet)
}

// SetStatus writes a status value into the status column of one data row,
// addressed by the row's zero-based position below the header.
func (w *Workbook) SetStatus(rowIndex int, status string) error {
	col, err := w.statusColumn()
	if err != nil {
		return err
	}

	// +2: sheet coordinates are one-based and row 1 is the header.
	cell, err := excelize.CoordinatesToCellName(col, rowIndex+2)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", rowIndex, err)
	}
	return w.file.SetCellValue(w.sheet, cell, status)
}

// ResetStatus clears the status column for every data row, establishing the
// clean slate before evaluation. Returns the number of rows cleared.
func (w *Workbook) ResetStatus() (int, error) {
	col, err := w.statusColumn()
	if err != nil {
		return 0, err
	}

	_, rows, err := w.Rows()
	if err != nil {
		return 0, err
	}

	cleared := 0
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(col, i+2)
		if err != nil {
			return cleared, fmt.Errorf("failed to address row %d: %w", i, err)
		}
		if err := w.file.SetCellValue(w.sheet, cell, nil); err != nil {
			return cleared, fmt.Errorf("failed to clear row %d: %w", i, err)
		}
		cleared++
	}

	w.logger.WithField("rows", cleared).Info("Status reset completed")
	return cleared, nil
}

// SetNamedValue writes a scalar into a workbook-level defined name.
func (w *Workbook) SetNamedValue(name, value string) error {
	sheetName, cell, err := w.resolveName(name)
	if err != nil {
		return err
	}
	return w.file.SetCellValue(sheetName, cell, value)
}

// GetNamedValue reads the scalar behind a workbook-level defined name.
func (w *Workbook) GetNamedValue(name string) (string, error) {
	sheetName, cell, err := w.resolveName(name)
	if err != nil {
		return "", err
	}
	return w.file.GetCellValue(sheetName, cell)
}

// resolveName maps a defined name to its sheet and first cell.
func (w *Workbook) resolveName(name string) (string, string, error) {
	for _, dn := range w.file.GetDefinedName() {
		if dn.Name != name {
			continue
		}
		return splitRef(dn.RefersTo)
	}
	return "", "", fmt.Errorf("named cell not found: %s", name)
}

// splitRef parses a single-cell reference like Settings!$B$2. A range
// reference resolves to its first cell.
func splitRef(ref string) (string, string, error) {
	i := strings.LastIndex(ref, "!")
	if i < 0 {
		return "", "", fmt.Errorf("malformed cell reference: %s", ref)
	}

	sheetName := strings.Trim(ref[:i], "'")
	cell := strings.ReplaceAll(ref[i+1:], "$", "")
	if j := strings.Index(cell, ":"); j >= 0 {
		cell = cell[:j]
	}
	if sheetName == "" || cell == "" {
		return "", "", fmt.Errorf("malformed cell reference: %s", ref)
	}
	return sheetName, cell, nil
}

// StampStart writes the business dates and run start time into the named
// metadata cells. A missing name is logged and skipped.
func (w *Workbook) StampStart(cbd, pbd, p2bd, start time.Time) {
	w.stamp(CellCurrentBusinessDay, cbd.Format(dateFormat))
	w.stamp(CellPriorBusinessDay, pbd.Format(dateFormat))
	w.stamp(CellPrior2BusinessDay, p2bd.Format(dateFormat))
	w.stamp(CellStartTime, start.Format(dateTimeFormat))
}

// StampEnd writes the run end time and elapsed duration into the named
// metadata cells.
func (w *Workbook) StampEnd(end time.Time, elapsed time.Duration) {
	w.stamp(CellEndTime, end.Format(dateTimeFormat))
	w.stamp(CellExecutionTime, elapsed.Truncate(time.Second).String())
}

func (w *Workbook) stamp(name, value string) {
	if err := w.SetNamedValue(name, value); err != nil {
		w.logger.WithError(err).WithField("name", name).Warn("Skipping metadata cell")
	}
}

// Save persists the workbook back to its original path.
func (w *Workbook) Save() error {
	if err := w.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.WithField("path", w.path).Info("Workbook saved")
	return nil
}
