package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store loads and replaces the complete record set.
type Store interface {
	Load() ([]Appointment, error)
	Save(appts []Appointment) error
	Close() error
}

// FileStore keeps all records in one text file.
type FileStore struct {
	path  string
	codec Codec
	log   *slog.Logger
}

func NewFileStore(path string, codec Codec, log *slog.Logger) (*FileStore, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, &StorageError{Op: "create directory", Path: dir, Err: err}
		}
	}

	return &FileStore{path: path, codec: codec, log: log}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads every record. A missing file is created empty. Parsing stops
// at the first malformed record; the records before it are returned.
func (s *FileStore) Load() ([]Appointment, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, &StorageError{Op: "create", Path: s.path, Err: err}
		}
		if err := f.Close(); err != nil {
			return nil, &StorageError{Op: "create", Path: s.path, Err: err}
		}
		s.log.Debug("created empty appointment file", "path", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	appts, err := s.codec.Decode(bytes.NewReader(data))
	if err != nil {
		var malformed *MalformedError
		if !errors.As(err, &malformed) {
			return nil, &StorageError{Op: "decode", Path: s.path, Err: err}
		}
		s.log.Warn("stopped reading at malformed record", "path", s.path, "line", malformed.Line, "kept", len(appts))
	}

	s.log.Debug("loaded appointments", "path", s.path, "count", len(appts))
	return appts, nil
}

// Save writes the records to a temporary file next to the target and
// renames it into place, so a failed write leaves the old file intact.
func (s *FileStore) Save(appts []Appointment) error {
	dir, base := filepath.Split(s.path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.NewString()))

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return &StorageError{Op: "create", Path: tmpPath, Err: err}
	}
	// no-op once renamed
	defer os.Remove(tmpPath)

	if err := s.codec.Encode(f, appts); err != nil {
		f.Close()
		return &StorageError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &StorageError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := f.Close(); err != nil {
		return &StorageError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &StorageError{Op: "replace", Path: s.path, Err: err}
	}

	s.log.Debug("saved appointments", "path", s.path, "count", len(appts))
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
