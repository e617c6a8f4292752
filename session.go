package main

import (
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Session holds the record set in memory. Mutations only reach the store
// on Save.
type Session struct {
	store   Store
	variant Variant
	appts   []Appointment
	dirty   bool
	now     func() time.Time
	log     *slog.Logger
}

// UpcomingAppointment is an appointment with its parsed start.
type UpcomingAppointment struct {
	Appointment
	At time.Time
	In time.Duration
}

func OpenSession(store Store, variant Variant, log *slog.Logger, now func() time.Time) (*Session, error) {
	appts, err := store.Load()
	if err != nil {
		return nil, err
	}

	s := &Session{
		store:   store,
		variant: variant,
		appts:   appts,
		now:     now,
		log:     log,
	}
	s.sort()
	return s, nil
}

// Appointments returns the records in display order.
func (s *Session) Appointments() []Appointment {
	return slices.Clone(s.appts)
}

func (s *Session) Len() int {
	return len(s.appts)
}

func (s *Session) Dirty() bool {
	return s.dirty
}

// Add appends a. In the booking variant a record already holding the same
// staff, date and time rejects it with a *ConflictError.
func (s *Session) Add(a Appointment) error {
	if s.variant == VariantBooking {
		for _, existing := range s.appts {
			if existing.Staff == a.Staff && existing.Date == a.Date && existing.Time == a.Time {
				return &ConflictError{Staff: existing.Staff, Date: existing.Date, Time: existing.Time}
			}
		}
	}

	s.appts = append(s.appts, a)
	s.sort()
	s.dirty = true
	return nil
}

// DeleteMatching removes every record whose trimmed name, date and time
// equal the trimmed arguments. Service and staff are not compared.
func (s *Session) DeleteMatching(name, date, clock string) (int, error) {
	n, d, t := trim(name), trim(date), trim(clock)
	before := len(s.appts)

	s.appts = slices.DeleteFunc(s.appts, func(a Appointment) bool {
		return trim(a.Name) == n && trim(a.Date) == d && trim(a.Time) == t
	})

	removed := before - len(s.appts)
	if removed == 0 {
		return 0, ErrNotFound
	}
	s.dirty = true
	return removed, nil
}

// DeleteAt removes the entry at the 1-based position of the display order.
func (s *Session) DeleteAt(index int) (Appointment, error) {
	if index < 1 || index > len(s.appts) {
		return Appointment{}, ErrInvalidSelection
	}

	removed := s.appts[index-1]
	s.appts = slices.Delete(s.appts, index-1, index)
	s.dirty = true
	return removed, nil
}

// EditAt overwrites the fields of the entry at the 1-based index with the
// non-empty fields of patch and returns the updated entry.
func (s *Session) EditAt(index int, patch Appointment) (Appointment, error) {
	if index < 1 || index > len(s.appts) {
		return Appointment{}, ErrInvalidSelection
	}

	a := &s.appts[index-1]
	keepOrSet(&a.Name, patch.Name)
	keepOrSet(&a.Service, patch.Service)
	keepOrSet(&a.Staff, patch.Staff)
	keepOrSet(&a.Date, patch.Date)
	keepOrSet(&a.Time, patch.Time)
	keepOrSet(&a.Category, patch.Category)
	updated := *a

	s.sort()
	s.dirty = true
	return updated, nil
}

func keepOrSet(field *string, v string) {
	if v != "" {
		*field = v
	}
}

// Search filters with the variant's rules. Booking: case-insensitive over
// client, staff, date and service, empty term matches all. Planner:
// case-sensitive over name and category only.
func (s *Session) Search(term string) []Appointment {
	var match func(Appointment) bool

	switch s.variant {
	case VariantPlanner:
		match = func(a Appointment) bool {
			return strings.Contains(a.Name, term) || strings.Contains(a.Category, term)
		}
	default:
		term = lowerASCII(trim(term))
		if term == "" {
			return s.Appointments()
		}
		match = func(a Appointment) bool {
			combined := lowerASCII(a.Name + " " + a.Staff + " " + a.Date + " " + a.Service)
			return strings.Contains(combined, term)
		}
	}

	var found []Appointment
	for _, a := range s.appts {
		if match(a) {
			found = append(found, a)
		}
	}
	return found
}

// Upcoming returns the records starting within the next days*24 whole
// hours. Past and unparseable records are left out.
func (s *Session) Upcoming(days int) []UpcomingAppointment {
	now := s.now()
	limit := 24 * days

	var found []UpcomingAppointment
	for _, a := range s.appts {
		at, err := parseLocal(a.Date, a.Time)
		if err != nil {
			s.log.Debug("skipping appointment with unreadable date", "name", a.Name, "error", err)
			continue
		}
		if at.Before(now) {
			continue
		}

		in := at.Sub(now)
		if int(in/time.Hour) <= limit {
			found = append(found, UpcomingAppointment{Appointment: a, At: at, In: in})
		}
	}
	return found
}

func (s *Session) Save() error {
	if err := s.store.Save(s.appts); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// planner records stay ordered by date then time, compared as text
func (s *Session) sort() {
	if s.variant != VariantPlanner {
		return
	}
	slices.SortStableFunc(s.appts, func(a, b Appointment) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Time, b.Time)
	})
}
