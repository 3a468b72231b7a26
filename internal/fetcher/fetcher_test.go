package fetcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForURL(t *testing.T) {
	httpF := NewHTTPFetcher(HTTPOptions{})
	ftpF := NewFTPFetcher(FTPOptions{})

	f, err := ForURL("https://stats.example.org/x.csv", httpF, ftpF)
	require.NoError(t, err)
	assert.Same(t, httpF, f)

	f, err = ForURL("ftp://ftp.example.org/x.csv", httpF, ftpF)
	require.NoError(t, err)
	assert.Same(t, ftpF, f)

	_, err = ForURL("gopher://example.org/x", httpF, ftpF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")

	n, err := writeAtomic(path, strings.NewReader("mineral,year\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mineral,year\n", string(data))
}

func TestWriteAtomic_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	_, err := writeAtomic(path, strings.NewReader("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestWriteAtomic_KeepsOldCopyOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.csv")
	require.NoError(t, os.WriteFile(path, []byte("good copy"), 0o644))

	_, err := writeAtomic(path, iotest.ErrReader(errors.New("connection reset")))
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "good copy", string(data))

	// The aborted temp file is cleaned up too.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomic_MissingDir(t *testing.T) {
	_, err := writeAtomic(filepath.Join(t.TempDir(), "sub", "x.csv"), strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temp file")
}
