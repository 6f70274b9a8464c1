package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"
)

// unsafeChars are the characters Windows filesystems reject in file names.
var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeName replaces filesystem-unsafe characters in a save name with
// underscores. Applied before every write, even if the name was already
// sanitized earlier in the run.
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// WriteError reports a failed attachment write. It is recovered per item:
// the run logs it and continues with the next candidate.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write attachment %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer persists matched attachments into a single run's archive directory.
// The directory must already exist; the writer never creates it. Two rules
// resolving to the same sanitized name overwrite each other.
type Writer struct {
	dir    string
	logger *logrus.Logger
}

// NewWriter creates a writer rooted at the run's archive directory.
func NewWriter(dir string, logger *logrus.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Save writes content under the sanitized name and returns the full path.
func (w *Writer) Save(name string, content []byte) (string, error) {
	full := filepath.Join(w.dir, SanitizeName(name))
	if err := os.WriteFile(full, content, 0644); err != nil {
		return "", &WriteError{Path: full, Err: err}
	}
	return full, nil
}
