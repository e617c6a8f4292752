package main

import (
	"fmt"
	"io"
	"strings"
	"time"
)

func PrintTable(w io.Writer, headers []string, rows [][]string, footers []string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	// print header
	for i, header := range headers {
		fmt.Fprintf(w, "%-*s\t", colWidths[i], header)
	}
	fmt.Fprintln(w)

	// print rows
	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(w, "%-*s\t", colWidths[i], cell)
		}
		fmt.Fprintln(w)
	}

	if len(footers) == 0 {
		return
	}

	// print footer
	for i, footer := range footers {
		fmt.Fprintf(w, "%-*s\t", colWidths[i], footer)
	}
	fmt.Fprintln(w)
}

// FormatDuration renders d as days, hours and minutes, e.g. "2d 03:15".
func FormatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	return fmt.Sprintf("%dd %02d:%02d", days, hours, minutes)
}

// strips space, tab, CR and LF from both ends
func trim(s string) string {
	return strings.Trim(s, " \t\r\n")
}

// lowercases ASCII letters only, byte by byte
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// parseLocal reads a "YYYY-MM-DD" date and "HH:MM" time as local time.
// Out of range components roll over into the next unit the way
// time.Date normalizes them.
func parseLocal(date, clock string) (time.Time, error) {
	var year, month, day, hour, minute int
	if _, err := fmt.Sscanf(date, "%d-%d-%d", &year, &month, &day); err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), nil
}

// one block per appointment, as printed by the booking list
func formatBlock(a Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s\n", a.Name)
	fmt.Fprintf(&b, "Service: %s\n", a.Service)
	fmt.Fprintf(&b, "Staff: %s\n", a.Staff)
	fmt.Fprintf(&b, "Date: %s | Time: %s\n", a.Date, a.Time)
	b.WriteString("--------------------------\n")
	return b.String()
}
