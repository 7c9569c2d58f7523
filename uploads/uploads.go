// Package uploads reads exchange export files from disk. Exchange download
// portals commonly hand out compressed archives, so .zip, .gz and .xz
// wrappers are unwrapped transparently before the CSV bytes reach the import
// pipeline.
package uploads

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
)

// Read returns the export's raw bytes, decompressing by file extension.
func Read(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return readZip(path)
	case ".gz":
		return readGzip(path)
	case ".xz":
		return readXz(path)
	default:
		return os.ReadFile(path)
	}
}

// Fingerprint returns the sha256 hex digest of the original file on disk,
// compressed form included, so the audit record identifies the exact upload.
func Fingerprint(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// readZip extracts the archive to a scratch directory and returns the bytes
// of the single CSV it contains.
func readZip(path string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "tradebook-upload-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(path, dir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	var csvPath string
	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if strings.EqualFold(filepath.Ext(p), ".csv") {
			if csvPath != "" {
				return fmt.Errorf("archive %s contains more than one csv file", path)
			}
			csvPath = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if csvPath == "" {
		return nil, fmt.Errorf("archive %s contains no csv file", path)
	}
	return os.ReadFile(csvPath)
}

func readGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gunzip %s: %w", path, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func readXz(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("unxz %s: %w", path, err)
	}
	return io.ReadAll(r)
}
