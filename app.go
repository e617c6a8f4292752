package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"
)

type App struct {
	cfg     *Config
	log     *slog.Logger
	store   Store
	book    *Book
	in      *bufio.Reader
	out     io.Writer
	chooser Chooser
	now     func() time.Time
}

func NewApp(cfg *Config, log *slog.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		in:      bufio.NewReader(in),
		out:     out,
		chooser: selectChooser{},
		now:     time.Now,
	}
}

// Open validates the configuration and opens the store. Flags are parsed
// by then, so it runs before each command rather than at startup.
func (a *App) Open() error {
	if a.book != nil {
		return nil
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	store, err := a.cfg.OpenStore(a.log)
	if err != nil {
		return err
	}

	a.store = store
	a.book = NewBook(store, a.cfg.Variant, a.log)
	a.book.now = a.now
	return nil
}

func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store, a.book = nil, nil
	return err
}

func (a *App) AddAppointment(fields []string) error {
	appt, err := a.cfg.Variant.FromFields(fields)
	if err != nil {
		return err
	}

	if err := a.book.Add(appt); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Appointment added successfully!")
	return nil
}

// ListAppointments prints all records, or those matching term.
func (a *App) ListAppointments(term string) error {
	if term != "" {
		return a.Search(term)
	}

	appts, err := a.book.List()
	if err != nil {
		return err
	}

	if a.cfg.Variant == VariantPlanner {
		a.printNumbered(appts)
		return nil
	}
	a.printBlocks(appts)
	return nil
}

func (a *App) Search(term string) error {
	appts, err := a.book.Search(term)
	if err != nil {
		return err
	}

	if a.cfg.Variant == VariantPlanner {
		a.printMatches(appts)
		return nil
	}
	a.printBlocks(appts)
	return nil
}

// DeleteAppointment takes client, date and time in the booking variant
// and a list position in the planner variant.
func (a *App) DeleteAppointment(args []string) error {
	var err error

	switch {
	case a.cfg.Variant == VariantPlanner && len(args) == 1:
		var index int
		index, err = strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(a.out, "Invalid number.")
			return nil
		}
		_, err = a.book.DeleteAt(index)
	case a.cfg.Variant == VariantBooking && len(args) == 3:
		_, err = a.book.DeleteMatching(args[0], args[1], args[2])
	default:
		return fmt.Errorf("%w: delete takes %s", errUsage, deleteArgs(a.cfg.Variant))
	}

	if err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Appointment deleted successfully.")
	return nil
}

func (a *App) EditAppointment(index int, patch Appointment) error {
	if _, err := a.book.EditAt(index, patch); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Appointment updated!")
	return nil
}

func (a *App) ShowUpcoming(days int) error {
	upcoming, err := a.book.Upcoming(days)
	if err != nil {
		return err
	}

	a.printUpcoming(upcoming, days)
	return nil
}

func (a *App) Import(url string) error {
	apiClient := NewAPIClient(url)

	remote, err := apiClient.GetUnimportedAppointments()
	if err != nil {
		return err
	}

	appts := make([]Appointment, len(remote))
	for i, r := range remote {
		appts[i] = r.Appointment()
	}

	res, err := a.book.AddAll(appts)
	if err != nil {
		return err
	}

	for _, c := range res.Conflicts {
		fmt.Fprintf(a.out, "Skipped: %s is already booked at %s %s.\n", c.Staff, c.Date, c.Time)
	}

	if len(res.Added) == 0 {
		fmt.Fprintf(a.out, "Imported 0 of %d appointments.\n", len(remote))
		return nil
	}

	IDs := make([]int, len(res.Added))
	for i, pos := range res.Added {
		IDs[i] = remote[pos].ID
	}

	marked, err := apiClient.MarkAppointmentsAsImported(IDs)
	if err != nil {
		// the records are saved locally already
		a.log.Warn("failed to mark appointments as imported", "url", url, "error", err)
	} else {
		a.log.Debug("marked appointments as imported", "imported", marked.ImportedCount, "remaining", marked.RemainingCount)
	}

	fmt.Fprintf(a.out, "Imported %d of %d appointments.\n", len(res.Added), len(remote))
	return nil
}

// report prints the message for an expected outcome and passes any other
// error through.
func (a *App) report(err error) error {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		fmt.Fprintf(a.out, "Conflict: %s is already booked at this time.\n", conflict.Staff)
	case errors.Is(err, ErrNotFound):
		fmt.Fprintln(a.out, "Appointment not found.")
	case errors.Is(err, ErrInvalidSelection):
		fmt.Fprintln(a.out, "Invalid number.")
	default:
		return err
	}
	return nil
}

func (a *App) printBlocks(appts []Appointment) {
	if len(appts) == 0 {
		fmt.Fprintln(a.out, "No appointments found.")
		return
	}
	for _, appt := range appts {
		fmt.Fprint(a.out, formatBlock(appt))
	}
}

// numbered list, positions match edit and delete
func (a *App) printNumbered(appts []Appointment) {
	if len(appts) == 0 {
		fmt.Fprintln(a.out, "No appointments.")
		return
	}

	var headers []string
	var rows [][]string
	if a.cfg.Variant == VariantPlanner {
		headers = []string{"#", "Category", "Date", "Time", "Name"}
		for i, appt := range appts {
			rows = append(rows, []string{strconv.Itoa(i + 1), appt.Category, appt.Date, appt.Time, appt.Name})
		}
	} else {
		headers = []string{"#", "Client", "Service", "Staff", "Date", "Time"}
		for i, appt := range appts {
			rows = append(rows, []string{strconv.Itoa(i + 1), appt.Name, appt.Service, appt.Staff, appt.Date, appt.Time})
		}
	}
	PrintTable(a.out, headers, rows, nil)
}

func (a *App) printMatches(appts []Appointment) {
	if len(appts) == 0 {
		fmt.Fprintln(a.out, "No matching appointments.")
		return
	}

	headers := []string{"Date", "Time", "Name", "Category"}
	var rows [][]string
	for _, appt := range appts {
		rows = append(rows, []string{appt.Date, appt.Time, appt.Name, appt.Category})
	}
	PrintTable(a.out, headers, rows, nil)
}

func (a *App) printUpcoming(upcoming []UpcomingAppointment, days int) {
	if len(upcoming) == 0 {
		fmt.Fprintf(a.out, "No upcoming appointments in the next %d days.\n", days)
		return
	}

	fmt.Fprintf(a.out, "Upcoming appointments (next %d days):\n", days)

	headers := []string{"Date", "Time", "Name", "Category", "Staff", "In"}
	if a.cfg.Variant == VariantBooking {
		headers[3] = "Service"
	}

	var rows [][]string
	for _, u := range upcoming {
		detail := u.Category
		if a.cfg.Variant == VariantBooking {
			detail = u.Service
		}
		rows = append(rows, []string{u.Date, u.Time, u.Name, detail, u.Staff, FormatDuration(u.In)})
	}

	footers := []string{"", "", "", "", "Total:", strconv.Itoa(len(upcoming))}
	PrintTable(a.out, headers, rows, footers)
}

func deleteArgs(v Variant) string {
	if v == VariantPlanner {
		return "<index>"
	}
	return "<client> <date> <time>"
}
