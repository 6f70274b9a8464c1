package archive

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean name untouched", "daily.csv", "daily.csv"},
		{"slashes and colons", "Q1/Q2:Report?.xlsx", "Q1_Q2_Report_.xlsx"},
		{"every unsafe character", `a<b>c:d"e/f\g|h?i*j.txt`, "a_b_c_d_e_f_g_h_i_j.txt"},
		{"empty name", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

func TestWriterSave(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(dir, quietLogger())

	path, err := writer.Save("daily.csv", []byte("1,2,3"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "daily.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,2,3", string(content))
}

func TestWriterSanitizesBeforeEveryWrite(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(dir, quietLogger())

	path, err := writer.Save("Q1/Q2:Report?.xlsx", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Q1_Q2_Report_.xlsx"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestWriterSameNameOverwrites(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(dir, quietLogger())

	_, err := writer.Save("daily.csv", []byte("old"))
	require.NoError(t, err)
	path, err := writer.Save("daily.csv", []byte("new"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestWriterMissingDirectory(t *testing.T) {
	writer := NewWriter(filepath.Join(t.TempDir(), "does-not-exist"), quietLogger())

	_, err := writer.Save("daily.csv", []byte("x"))
	require.Error(t, err)

	var writeErr *WriteError
	assert.True(t, errors.As(err, &writeErr))
}
