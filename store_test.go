package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFileStore(t *testing.T, variant Variant) *FileStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "appointments.txt")
	store, err := NewFileStore(path, CodecFor(variant), discardLogger())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestFileStore_LoadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "appointments.txt")
	store, err := NewFileStore(path, quotedCodec{}, discardLogger())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	appts, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(appts) != 0 {
		t.Fatalf("expected no appointments, got %d", len(appts))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected file to be created: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected empty file, got %d bytes", info.Size())
	}
}

func TestFileStore_SaveThenLoad(t *testing.T) {
	store := newTestFileStore(t, VariantBooking)
	appts := []Appointment{
		{Name: "Ann", Service: "Cut", Staff: "Dr. Lee", Date: "2024-06-01", Time: "10:00"},
		{Name: "Bob", Service: "Shave", Staff: "Dr. Gomez", Date: "2024-06-01", Time: "11:00"},
	}

	if err := store.Save(appts); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, appts) {
		t.Fatalf("expected %#v, got %#v", appts, got)
	}

	// only the target file remains in the directory
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "appointments.txt" {
		t.Fatalf("expected only appointments.txt, got %v", entries)
	}
}

func TestFileStore_SaveReplacesContent(t *testing.T) {
	store := newTestFileStore(t, VariantPlanner)

	if err := store.Save([]Appointment{{Name: "A"}, {Name: "B"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save([]Appointment{{Name: "C", Date: "2024-01-01", Time: "09:00", Category: "Work"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "C;2024-01-01;09:00;Work\n" {
		t.Fatalf("unexpected file content %q", data)
	}
}

func TestFileStore_LoadKeepsRecordsBeforeMalformed(t *testing.T) {
	store := newTestFileStore(t, VariantBooking)
	content := "\"Ann\" \"Cut\" \"Dr. Lee\" \"2024-06-01\" \"10:00\"\n\"Bob\" \"Shave\" \"oops\n"
	if err := os.WriteFile(store.Path(), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	appts, err := store.Load()
	if err != nil {
		t.Fatalf("expected malformed input to be tolerated, got %v", err)
	}
	if len(appts) != 1 || appts[0].Name != "Ann" {
		t.Fatalf("expected Ann only, got %#v", appts)
	}
}

func TestFileStore_LoadDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, quotedCodec{}, discardLogger())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, err = store.Load()
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if storageErr.Op != "read" {
		t.Fatalf("expected read op, got %q", storageErr.Op)
	}
}
