package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// migration queries
	createAppointmentsTableSQL = `
  CREATE TABLE IF NOT EXISTS appointments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL DEFAULT '',
  service TEXT NOT NULL DEFAULT '',
  staff TEXT NOT NULL DEFAULT '',
  date TEXT NOT NULL DEFAULT '',
  time TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
  )`

	// appointment queries
	getAllAppointmentsSQL    = `SELECT name, service, staff, date, time, category FROM appointments ORDER BY id`
	deleteAllAppointmentsSQL = `DELETE FROM appointments`
	createAppointmentSQL     = `INSERT INTO appointments (name, service, staff, date, time, category) VALUES (?, ?, ?, ?, ?, ?)`
)

// Repo is the SQLite backend. It keeps the same load-all/save-all
// contract as the text file store.
type Repo struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

func NewRepo(dbPath string, log *slog.Logger) (*Repo, error) {
	// ensure directory exists
	err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
	if err != nil {
		return nil, &StorageError{Op: "create directory", Path: filepath.Dir(dbPath), Err: err}
	}

	// open database
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, &StorageError{Op: "open", Path: dbPath, Err: err}
	}

	// verify connection with database
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Op: "ping", Path: dbPath, Err: err}
	}

	repo := &Repo{db: db, path: dbPath, log: log}

	// run migrations
	if err := repo.runMigrations(); err != nil {
		db.Close()
		return nil, &StorageError{Op: "migrate", Path: dbPath, Err: err}
	}

	return repo, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// runs migrations on initial start
func (r *Repo) runMigrations() error {
	tables := []string{
		createAppointmentsTableSQL,
	}

	for _, tableSQL := range tables {
		if _, err := r.db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// get all appointments in insertion order
func (r *Repo) Load() ([]Appointment, error) {
	rows, err := r.db.Query(getAllAppointmentsSQL)
	if err != nil {
		return nil, &StorageError{Op: "query", Path: r.path, Err: err}
	}
	defer rows.Close()

	var appts []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.Name, &a.Service, &a.Staff, &a.Date, &a.Time, &a.Category); err != nil {
			return nil, &StorageError{Op: "scan", Path: r.path, Err: err}
		}
		appts = append(appts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Path: r.path, Err: err}
	}

	r.log.Debug("loaded appointments", "path", r.path, "count", len(appts))
	return appts, nil
}

// replace all appointments in one transaction
func (r *Repo) Save(appts []Appointment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return &StorageError{Op: "begin", Path: r.path, Err: err}
	}
	defer tx.Rollback()

	// drop the previous set
	if _, err := tx.Exec(deleteAllAppointmentsSQL); err != nil {
		return &StorageError{Op: "clear", Path: r.path, Err: err}
	}

	stmt, err := tx.Prepare(createAppointmentSQL)
	if err != nil {
		return &StorageError{Op: "prepare", Path: r.path, Err: err}
	}
	defer stmt.Close()

	for _, a := range appts {
		if _, err := stmt.Exec(a.Name, a.Service, a.Staff, a.Date, a.Time, a.Category); err != nil {
			return &StorageError{Op: "insert", Path: r.path, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit", Path: r.path, Err: err}
	}

	r.log.Debug("saved appointments", "path", r.path, "count", len(appts))
	return nil
}
