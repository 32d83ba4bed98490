// Package datasettest builds xz-compressed CSV archives for tests.
package datasettest

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Compress returns header and records encoded as CSV and compressed with xz.
func Compress(t testing.TB, header []string, records [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	writeCSV(t, zw, header, records)
	return buf.Bytes()
}

// CompressLZMA is Compress with the legacy .lzma format.
func CompressLZMA(t testing.TB, header []string, records [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := lzma.NewWriter(&buf)
	require.NoError(t, err)
	writeCSV(t, zw, header, records)
	return buf.Bytes()
}

func writeCSV(t testing.TB, zw io.WriteCloser, header []string, records [][]string) {
	t.Helper()
	w := csv.NewWriter(zw)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, zw.Close())
}

// WriteArchive writes a compressed archive named name into dir and returns
// its path.
func WriteArchive(t testing.TB, dir, name string, header []string, records [][]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, Compress(t, header, records), 0o644))
	return path
}
