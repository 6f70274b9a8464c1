package rules

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from the mapping sheet.
// It aborts the run; nothing can be matched without a complete schema.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("mapping table missing required columns: %s", strings.Join(e.Missing, ", "))
}
