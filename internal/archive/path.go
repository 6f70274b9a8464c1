package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Path returns the archive directory for a business date, creating it if
// needed. Layout: <base>/<year>/<month name>/COB <mm.dd.yyyy>, one directory
// per calendar day.
func Path(base string, date time.Time) (string, error) {
	dir := filepath.Join(
		base,
		date.Format("2006"),
		date.Format("January"),
		"COB "+date.Format("01.02.2006"),
	)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	return dir, nil
}
