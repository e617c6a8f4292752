package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestApp(t *testing.T, variant Variant) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := &Config{
		Path:         filepath.Join(t.TempDir(), "appointments.txt"),
		Variant:      variant,
		Backend:      BackendFile,
		LogLevel:     slog.LevelWarn,
		UpcomingDays: 7,
	}
	out := &bytes.Buffer{}
	return NewApp(cfg, discardLogger(), strings.NewReader(""), out), out
}

func storedAppointments(t *testing.T, a *App) []Appointment {
	t.Helper()

	if err := a.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	appts, err := a.book.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return appts
}

// runOK runs a command line, expects exit code 0 and returns its output.
func runOK(t *testing.T, a *App, out *bytes.Buffer, args ...string) string {
	t.Helper()

	// cobra falls back to os.Args when given nil
	if args == nil {
		args = []string{}
	}

	out.Reset()
	if code := run(a, args, out); code != 0 {
		t.Fatalf("%v: expected exit 0, got %d: %s", args, code, out)
	}
	return out.String()
}

func TestCommands_BookingFlow(t *testing.T) {
	a, out := newTestApp(t, VariantBooking)

	if got := runOK(t, a, out, "list"); got != "No appointments found.\n" {
		t.Fatalf("expected no results message, got %q", got)
	}

	got := runOK(t, a, out, "add", "Ann Smith", "Consultation", "Dr. Lee", "2024-06-01", "10:00")
	if got != "Appointment added successfully!\n" {
		t.Fatalf("unexpected add output %q", got)
	}

	got = runOK(t, a, out, "add", "Bob", "Therapy", "Dr. Lee", "2024-06-01", "10:00")
	if got != "Conflict: Dr. Lee is already booked at this time.\n" {
		t.Fatalf("unexpected conflict output %q", got)
	}

	want := "Client: Ann Smith\n" +
		"Service: Consultation\n" +
		"Staff: Dr. Lee\n" +
		"Date: 2024-06-01 | Time: 10:00\n" +
		"--------------------------\n"
	if got := runOK(t, a, out, "list"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := runOK(t, a, out, "list", "DR. lee"); got != want {
		t.Fatalf("expected case-insensitive match, got %q", got)
	}
	if got := runOK(t, a, out, "search", "nobody"); got != "No appointments found.\n" {
		t.Fatalf("expected no results, got %q", got)
	}

	if got := runOK(t, a, out, "delete", "Ann Smith", "2024-06-02", "10:00"); got != "Appointment not found.\n" {
		t.Fatalf("unexpected not found output %q", got)
	}
	if got := runOK(t, a, out, "delete", "Ann Smith", "2024-06-01", "10:00"); got != "Appointment deleted successfully.\n" {
		t.Fatalf("unexpected delete output %q", got)
	}
	if n := len(storedAppointments(t, a)); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}
}

func TestCommands_BookingFileFormat(t *testing.T) {
	a, out := newTestApp(t, VariantBooking)
	runOK(t, a, out, "add", `Ann "AJ" Smith`, "Cut", "Dr. Lee", "2024-06-01", "10:00")

	data, err := os.ReadFile(a.cfg.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := `"Ann \"AJ\" Smith" "Cut" "Dr. Lee" "2024-06-01" "10:00"` + "\n"
	if string(data) != want {
		t.Fatalf("expected %q, got %q", want, data)
	}
}

func TestCommands_PlannerFlow(t *testing.T) {
	a, out := newTestApp(t, VariantPlanner)

	runOK(t, a, out, "add", "Standup", "2024-06-04", "09:00", "Work")
	runOK(t, a, out, "add", "Dentist", "2024-06-03", "10:00", "Health")

	got := runOK(t, a, out, "list")
	if !strings.Contains(got, "1") || strings.Index(got, "Dentist") > strings.Index(got, "Standup") {
		t.Fatalf("expected Dentist listed first, got %q", got)
	}

	if got := runOK(t, a, out, "search", "work"); got != "No matching appointments.\n" {
		t.Fatalf("expected case-sensitive search, got %q", got)
	}
	if got := runOK(t, a, out, "search", "Work"); !strings.Contains(got, "Standup") {
		t.Fatalf("expected Standup match, got %q", got)
	}

	if got := runOK(t, a, out, "edit", "5", "--name", "x"); got != "Invalid number.\n" {
		t.Fatalf("unexpected edit output %q", got)
	}
	if got := runOK(t, a, out, "edit", "1", "--date", "2024-06-05"); got != "Appointment updated!\n" {
		t.Fatalf("unexpected edit output %q", got)
	}

	data, err := os.ReadFile(a.cfg.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "Standup;2024-06-04;09:00;Work\nDentist;2024-06-05;10:00;Health\n"
	if string(data) != want {
		t.Fatalf("expected %q, got %q", want, data)
	}

	if got := runOK(t, a, out, "delete", "3"); got != "Invalid number.\n" {
		t.Fatalf("unexpected delete output %q", got)
	}
	if got := runOK(t, a, out, "delete", "two"); got != "Invalid number.\n" {
		t.Fatalf("unexpected delete output %q", got)
	}
	runOK(t, a, out, "delete", "1")

	appts := storedAppointments(t, a)
	if len(appts) != 1 || appts[0].Name != "Dentist" {
		t.Fatalf("expected Dentist to remain, got %v", names(appts))
	}
}

func TestCommands_Upcoming(t *testing.T) {
	a, out := newTestApp(t, VariantPlanner)
	a.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local) }

	runOK(t, a, out, "add", "Dentist", "2024-06-03", "10:00", "Health")
	runOK(t, a, out, "add", "Trip", "2024-06-09", "10:00", "Personal")

	got := runOK(t, a, out, "upcoming")
	if !strings.Contains(got, "Dentist") || strings.Contains(got, "Trip") {
		t.Fatalf("expected only Dentist, got %q", got)
	}
	if !strings.Contains(got, "2d 00:00") {
		t.Fatalf("expected distance column, got %q", got)
	}

	got = runOK(t, a, out, "upcoming", "--days", "10")
	if !strings.Contains(got, "Trip") {
		t.Fatalf("expected Trip within 10 days, got %q", got)
	}

	a.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local) }
	if got := runOK(t, a, out, "upcoming"); got != "No upcoming appointments in the next 7 days.\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCommands_InvalidInputExitsZero(t *testing.T) {
	tests := [][]string{
		{"add", "only", "three", "args"},
		{"delete", "Ann"},
		{"frobnicate"},
		{"list", "a", "b"},
		{"upcoming", "--days", "0"},
		{"list", "--variant", "calendar"},
	}

	for _, args := range tests {
		a, out := newTestApp(t, VariantBooking)
		got := runOK(t, a, out, args...)
		if !strings.HasPrefix(got, "Invalid command or arguments.\n") {
			t.Fatalf("%v: expected usage message, got %q", args, got)
		}
		if !strings.Contains(got, "Usage:") {
			t.Fatalf("%v: expected usage text, got %q", args, got)
		}
	}
}

func TestCommands_NoArgsPrintsHelp(t *testing.T) {
	a, out := newTestApp(t, VariantBooking)

	got := runOK(t, a, out)
	if !strings.Contains(got, "Usage:") || !strings.Contains(got, "delete") {
		t.Fatalf("expected help text, got %q", got)
	}
	if _, err := os.Stat(a.cfg.Path); !os.IsNotExist(err) {
		t.Fatalf("expected no store access without a command")
	}
}

func TestCommands_StorageFailureExitsOne(t *testing.T) {
	a, out := newTestApp(t, VariantBooking)
	a.cfg.Path = t.TempDir()

	if code := run(a, []string{"list"}, out); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(out.String(), "Error: failed to read") {
		t.Fatalf("unexpected error output %q", out)
	}
}

func TestCommands_VariantFlagOverridesConfig(t *testing.T) {
	a, out := newTestApp(t, VariantBooking)

	runOK(t, a, out, "--variant", "planner", "add", "Gym", "2024-06-01", "07:00", "Personal")

	data, err := os.ReadFile(a.cfg.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "Gym;2024-06-01;07:00;Personal\n" {
		t.Fatalf("expected planner format, got %q", data)
	}
}

func TestCommands_SQLiteBackend(t *testing.T) {
	a, out := newTestApp(t, VariantBooking)
	dbPath := filepath.Join(t.TempDir(), "appointments.db")

	runOK(t, a, out, "--backend", "sqlite", "--file", dbPath, "add", "Ann", "Cut", "Dr. Lee", "2024-06-01", "10:00")
	got := runOK(t, a, out, "--backend", "sqlite", "--file", dbPath, "add", "Bob", "Cut", "Dr. Lee", "2024-06-01", "10:00")
	if got != "Conflict: Dr. Lee is already booked at this time.\n" {
		t.Fatalf("unexpected output %q", got)
	}

	got = runOK(t, a, out, "--backend", "sqlite", "--file", dbPath, "list")
	if !strings.Contains(got, "Client: Ann") || strings.Contains(got, "Client: Bob") {
		t.Fatalf("unexpected list output %q", got)
	}
}
