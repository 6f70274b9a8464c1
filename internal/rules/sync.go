package rules

// Apply folds outcomes into the table strictly by row identity. Rows without
// an outcome keep their current status; outcomes referencing rows outside the
// table are ignored. Applying the same outcome set twice leaves the table in
// the same state as applying it once.
func Apply(t *Table, outcomes []Outcome) int {
	applied := 0
	for _, o := range outcomes {
		if o.RowIndex < 0 || o.RowIndex >= len(t.Rules) {
			continue
		}
		t.Rules[o.RowIndex].Status = o.Status
		applied++
	}
	return applied
}
