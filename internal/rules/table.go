package rules

import (
	"strings"
)

// StatusSaved is the terminal status written to a row once at least one of
// its rule's patterns is satisfied in a run.
const StatusSaved = "Saved"

// requiredColumns must all be present (case-insensitive) in the header row
// of the mapping sheet. Extra columns are ignored.
var requiredColumns = []string{"sender", "subject", "attachment", "savename", "status"}

// Rule is one row of the mapping table: an expected sender/subject/attachment
// combination and the filename its attachment should be archived under.
type Rule struct {
	// RowIndex is the zero-based position of the row in the source sheet.
	// It is the sole key used for status writeback and stays valid even if
	// the sheet is later re-sorted for display.
	RowIndex int

	SenderKey         string
	SubjectKey        string
	AttachmentPattern string
	SaveName          string
	Status            string
}

// Table is an ordered snapshot of the mapping sheet taken at run start.
type Table struct {
	Rules []Rule
}

// Normalize lower-cases and trims a value the way every key cell (sender,
// subject, attachment) is normalized. Loader and evaluator must use the
// same normalization or matches are silently lost.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Load builds a Table from the mapping sheet's header row and data rows.
// Header names are matched case-insensitively; a missing required column
// yields a SchemaError. Cells beyond a short row read as empty strings.
func Load(header []string, rows [][]string) (*Table, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = Normalize(name)
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	table := &Table{Rules: make([]Rule, 0, len(rows))}
	for i, row := range rows {
		cell := func(name string) string {
			idx := columns[name]
			if idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		table.Rules = append(table.Rules, Rule{
			RowIndex:          i,
			SenderKey:         Normalize(cell("sender")),
			SubjectKey:        Normalize(cell("subject")),
			AttachmentPattern: Normalize(cell("attachment")),
			SaveName:          strings.TrimSpace(cell("savename")),
			Status:            strings.TrimSpace(cell("status")),
		})
	}

	return table, nil
}

// Reset clears the status of every rule, establishing the clean-slate
// invariant before evaluation starts. Returns the number of rows that
// carried a status from a previous run.
func (t *Table) Reset() int {
	cleared := 0
	for i := range t.Rules {
		if t.Rules[i].Status != "" {
			cleared++
		}
		t.Rules[i].Status = ""
	}
	return cleared
}
