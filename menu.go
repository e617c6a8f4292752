package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nexidian/gocliselect"
)

// Chooser picks one option out of a menu and returns its ID. An empty
// ID means the menu was dismissed.
type Chooser interface {
	Choose(prompt string, options []MenuOption) string
}

type MenuOption struct {
	Label string
	ID    string
}

// selectChooser draws an arrow-key menu on the terminal.
type selectChooser struct{}

func (selectChooser) Choose(prompt string, options []MenuOption) string {
	menu := gocliselect.NewMenu(prompt)
	for _, o := range options {
		menu.AddItem(o.Label, o.ID)
	}
	id, err := menu.Display()
	if err != nil {
		return ""
	}
	s, _ := id.(string)
	return s
}

var menuOptions = []MenuOption{
	{Label: "Add appointment", ID: "add"},
	{Label: "View appointments", ID: "view"},
	{Label: "Delete appointment", ID: "delete"},
	{Label: "Edit appointment", ID: "edit"},
	{Label: "Search appointments", ID: "search"},
	{Label: "Show upcoming appointments", ID: "upcoming"},
	{Label: "Save", ID: "save"},
	{Label: "Exit", ID: "exit"},
}

type menuField struct {
	label string
	ptr   func(*Appointment) *string
}

func fieldsFor(v Variant) []menuField {
	name := menuField{"name", func(a *Appointment) *string { return &a.Name }}
	date := menuField{"date (YYYY-MM-DD)", func(a *Appointment) *string { return &a.Date }}
	clock := menuField{"time (HH:MM)", func(a *Appointment) *string { return &a.Time }}

	if v == VariantPlanner {
		return []menuField{
			name,
			date,
			clock,
			{"category (Work / Health / Personal)", func(a *Appointment) *string { return &a.Category }},
		}
	}

	name.label = "client name"
	return []menuField{
		name,
		{"service", func(a *Appointment) *string { return &a.Service }},
		{"staff", func(a *Appointment) *string { return &a.Staff }},
		date,
		clock,
	}
}

// RunMenu runs the interactive loop. The records are loaded once; only
// Save and Exit write them back.
func (a *App) RunMenu() error {
	s, err := a.book.Session()
	if err != nil {
		return err
	}

	for {
		var err error
		choice := a.chooser.Choose("=== Appointment System ===", menuOptions)

		switch choice {
		case "add":
			err = a.menuAdd(s)
		case "view":
			a.printNumbered(s.Appointments())
		case "delete":
			err = a.menuDelete(s)
		case "edit":
			err = a.menuEdit(s)
		case "search":
			err = a.menuSearch(s)
		case "upcoming":
			a.printUpcoming(s.Upcoming(a.cfg.UpcomingDays), a.cfg.UpcomingDays)
		case "save":
			if err := s.Save(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Saved.")
		case "exit", "":
			return a.exitMenu(s)
		default:
			fmt.Fprintln(a.out, "Invalid option.")
		}

		if errors.Is(err, io.EOF) {
			// input closed mid-prompt
			return a.exitMenu(s)
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) exitMenu(s *Session) error {
	if err := s.Save(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Goodbye!")
	return nil
}

func (a *App) menuAdd(s *Session) error {
	var appt Appointment
	for _, f := range fieldsFor(a.cfg.Variant) {
		v, err := a.prompt(fmt.Sprintf("Enter %s: ", f.label))
		if err != nil {
			return err
		}
		*f.ptr(&appt) = v
	}

	if err := s.Add(appt); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Appointment added successfully!")
	return nil
}

func (a *App) menuDelete(s *Session) error {
	a.printNumbered(s.Appointments())
	if s.Len() == 0 {
		return nil
	}

	index, ok, err := a.promptIndex("Enter appointment number to delete: ")
	if err != nil || !ok {
		return err
	}

	if _, err := s.DeleteAt(index); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) menuEdit(s *Session) error {
	a.printNumbered(s.Appointments())
	if s.Len() == 0 {
		return nil
	}

	index, ok, err := a.promptIndex("Enter appointment number to edit: ")
	if err != nil || !ok {
		return err
	}
	if index < 1 || index > s.Len() {
		return a.report(ErrInvalidSelection)
	}

	current := s.Appointments()[index-1]
	var patch Appointment
	for _, f := range fieldsFor(a.cfg.Variant) {
		v, err := a.prompt(fmt.Sprintf("Enter new %s (%s): ", f.label, *f.ptr(&current)))
		if err != nil {
			return err
		}
		*f.ptr(&patch) = v
	}

	if _, err := s.EditAt(index, patch); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Appointment updated!")
	return nil
}

func (a *App) menuSearch(s *Session) error {
	term, err := a.prompt("Enter search term: ")
	if err != nil {
		return err
	}

	if a.cfg.Variant == VariantPlanner {
		a.printMatches(s.Search(term))
		return nil
	}
	a.printBlocks(s.Search(term))
	return nil
}

// prompt reads one line without its line ending.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)

	line, err := a.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptIndex reads a list position; ok is false when the input is not
// a number, which has already been reported.
func (a *App) promptIndex(label string) (int, bool, error) {
	v, err := a.prompt(label)
	if err != nil {
		return 0, false, err
	}

	index, err := strconv.Atoi(trim(v))
	if err != nil {
		fmt.Fprintln(a.out, "Invalid number.")
		return 0, false, nil
	}
	return index, true, nil
}
