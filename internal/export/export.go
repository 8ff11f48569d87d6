// Package export writes engine responses as gzip-compressed JSON
// archives, so large diff trees and traversal results can be stored or
// shipped without the surrounding service re-encoding them.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// WriteArchive gzip-compresses the JSON encoding of v into w.
func WriteArchive(w io.Writer, v interface{}) error {
	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		gz.Close()
		return fmt.Errorf("encode archive: %w", err)
	}
	return gz.Close()
}

// WriteArchiveFile writes the archive to path, creating parent
// directories. A ".json.gz" suffix is appended when path carries no
// ".gz" suffix already.
func WriteArchiveFile(path string, v interface{}) (string, error) {
	if !strings.HasSuffix(path, ".gz") {
		path += ".json.gz"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	if err := WriteArchive(f, v); err != nil {
		return "", err
	}
	return path, nil
}

// ReadArchive decompresses and decodes an archive produced by
// WriteArchive into v.
func ReadArchive(r io.Reader, v interface{}) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer gz.Close()

	if err := json.NewDecoder(gz).Decode(v); err != nil {
		return fmt.Errorf("decode archive: %w", err)
	}
	return nil
}
