// Package store writes and reads the token→name output file.
//
// The file is a single JSON object mapping each token to its name, indented
// with four spaces. Every save replaces the whole file; nothing is merged
// with what was there before.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/muurk/scantag/internal/apperr"
)

// DefaultPath is the output file used when none is configured.
const DefaultPath = "data.json"

const indent = "    "

// Save writes names to path, replacing any existing file. The data goes to
// a temporary file in the same directory first and is renamed into place,
// so a failed save leaves the previous file untouched. An existing file's
// permissions are kept.
func Save(path string, names map[string]string) error {
	if path == "" {
		path = DefaultPath
	}
	if names == nil {
		names = map[string]string{}
	}

	data, err := Encode(names)
	if err != nil {
		return apperr.NewIOError(path, "failed to encode names", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperr.NewIOError(path, "failed to create temporary file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperr.NewIOError(path, "failed to write output file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperr.NewIOError(path, "failed to write output file", err)
	}
	if err := os.Chmod(tmpPath, fileMode(path)); err != nil {
		os.Remove(tmpPath)
		return apperr.NewIOError(path, "failed to set file permissions", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperr.NewIOError(path, "failed to replace output file", err)
	}
	return nil
}

// fileMode keeps the permissions of an existing output file. New files are
// 0644.
func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return 0644
}

// Encode renders names the way Save writes them.
func Encode(names map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(names); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Load reads a file written by Save. A missing file is reported as an I/O
// error wrapping os.ErrNotExist.
func Load(path string) (map[string]string, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NewIOError(path, "output file does not exist", err)
		}
		return nil, apperr.NewIOError(path, "failed to read output file", err)
	}

	names := map[string]string{}
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, apperr.NewIOError(path, "output file is not a JSON object of strings", err)
	}
	return names, nil
}
