package main

import (
	"errors"
	"log/slog"
	"time"
)

// Book runs each operation against a fresh load of the store and saves
// after every successful mutation. Changes made by other processes
// between calls are picked up, but two processes saving at once can
// lose an update.
type Book struct {
	store   Store
	variant Variant
	now     func() time.Time
	log     *slog.Logger
}

func NewBook(store Store, variant Variant, log *slog.Logger) *Book {
	return &Book{
		store:   store,
		variant: variant,
		now:     time.Now,
		log:     log,
	}
}

func (b *Book) Variant() Variant {
	return b.variant
}

// Session opens a session over the current contents of the store.
func (b *Book) Session() (*Session, error) {
	return OpenSession(b.store, b.variant, b.log, b.now)
}

func (b *Book) Add(a Appointment) error {
	s, err := b.Session()
	if err != nil {
		return err
	}
	if err := s.Add(a); err != nil {
		return err
	}
	return s.Save()
}

func (b *Book) DeleteMatching(name, date, clock string) (int, error) {
	s, err := b.Session()
	if err != nil {
		return 0, err
	}
	n, err := s.DeleteMatching(name, date, clock)
	if err != nil {
		return 0, err
	}
	return n, s.Save()
}

func (b *Book) DeleteAt(index int) (Appointment, error) {
	s, err := b.Session()
	if err != nil {
		return Appointment{}, err
	}
	removed, err := s.DeleteAt(index)
	if err != nil {
		return Appointment{}, err
	}
	return removed, s.Save()
}

func (b *Book) EditAt(index int, patch Appointment) (Appointment, error) {
	s, err := b.Session()
	if err != nil {
		return Appointment{}, err
	}
	updated, err := s.EditAt(index, patch)
	if err != nil {
		return Appointment{}, err
	}
	return updated, s.Save()
}

// List returns every record in display order.
func (b *Book) List() ([]Appointment, error) {
	s, err := b.Session()
	if err != nil {
		return nil, err
	}
	return s.Appointments(), nil
}

func (b *Book) Search(term string) ([]Appointment, error) {
	s, err := b.Session()
	if err != nil {
		return nil, err
	}
	return s.Search(term), nil
}

func (b *Book) Upcoming(days int) ([]UpcomingAppointment, error) {
	s, err := b.Session()
	if err != nil {
		return nil, err
	}
	return s.Upcoming(days), nil
}

// ImportResult reports which of a batch of records were added.
type ImportResult struct {
	Added     []int // positions in the batch
	Conflicts []*ConflictError
}

// AddAll adds a batch in one load/save cycle. Conflicting records are
// skipped and reported; the others are kept.
func (b *Book) AddAll(appts []Appointment) (ImportResult, error) {
	var res ImportResult

	s, err := b.Session()
	if err != nil {
		return res, err
	}

	for i, a := range appts {
		if err := s.Add(a); err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				res.Conflicts = append(res.Conflicts, conflict)
				continue
			}
			return res, err
		}
		res.Added = append(res.Added, i)
	}

	if len(res.Added) == 0 {
		return res, nil
	}
	return res, s.Save()
}
