package uploads

import (
	"archive/zip"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const sample = "Date,Side,Futures\n2024-01-01 10:00:00,Open Long,BTCUSDT\n"

func TestReadPlainFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	data, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
}

func TestReadGzip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := gzip.NewWriter(f)
	_, err = w.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	data, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
}

func TestReadXz(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.csv.xz")
	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := xz.NewWriter(f)
	require.NoError(t, err)
	_, err = w.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	data, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestReadZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.zip")
	writeZip(t, path, map[string]string{"export.csv": sample})

	data, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
}

func TestReadZipNoCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.zip")
	writeZip(t, path, map[string]string{"readme.txt": "nothing here"})

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no csv file")
}

func TestReadZipMultipleCSVs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.zip")
	writeZip(t, path, map[string]string{"a.csv": sample, "b.csv": sample})

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one csv")
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Read(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	sum, size, err := Fingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(sample)), size)

	want := sha256.Sum256([]byte(sample))
	assert.Equal(t, hex.EncodeToString(want[:]), sum)
}
