package main

import (
	"errors"
	"fmt"
)

// Variant selects the field set, file format and operation semantics.
type Variant string

const (
	// client/service/staff/date/time, quoted format, conflict-checked adds
	VariantBooking Variant = "booking"
	// name/date/time/category, ';' format, kept sorted by date and time
	VariantPlanner Variant = "planner"
)

func (v Variant) Valid() bool {
	return v == VariantBooking || v == VariantPlanner
}

// number of positional fields an add takes
func (v Variant) AddArity() int {
	if v == VariantPlanner {
		return 4
	}
	return 5
}

// Appointment is a single record. The booking variant leaves Category
// empty, the planner variant leaves Service and Staff empty. Name holds
// the client in the booking variant.
type Appointment struct {
	Name     string `json:"client"`
	Service  string `json:"service,omitempty"`
	Staff    string `json:"staff,omitempty"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Category string `json:"category,omitempty"`
}

// builds an appointment from positional fields in the variant's order
func (v Variant) FromFields(fields []string) (Appointment, error) {
	if len(fields) != v.AddArity() {
		return Appointment{}, fmt.Errorf("%w: expected %d fields, got %d", errUsage, v.AddArity(), len(fields))
	}
	if v == VariantPlanner {
		return Appointment{Name: fields[0], Date: fields[1], Time: fields[2], Category: fields[3]}, nil
	}
	return Appointment{Name: fields[0], Service: fields[1], Staff: fields[2], Date: fields[3], Time: fields[4]}, nil
}

var (
	ErrConflict         = errors.New("slot already booked")
	ErrNotFound         = errors.New("appointment not found")
	ErrInvalidSelection = errors.New("invalid selection")

	errUsage = errors.New("invalid command or arguments")
)

// ConflictError reports the staff member already booked at a date and time.
type ConflictError struct {
	Staff string
	Date  string
	Time  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s is already booked at %s %s", e.Staff, e.Date, e.Time)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StorageError wraps a failure reading or writing the backing store.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
