package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

// fakeRemote serves the import API and records the IDs it was asked to mark.
type fakeRemote struct {
	appointments []APIAppointment
	marked       []int
}

func (f *fakeRemote) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/appointments", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{
			Success: true,
			Data:    AppointmentsResponse{Total: len(f.appointments), Appointments: f.appointments},
		})
	})

	mux.HandleFunc("POST /api/appointments/mark", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AppointmentIDs []int `json:"appointment_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding mark request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.marked = append(f.marked, req.AppointmentIDs...)
		json.NewEncoder(w).Encode(Response{
			Success: true,
			Data: MarkImportedResponse{
				ImportedCount:  len(req.AppointmentIDs),
				RemainingCount: len(f.appointments) - len(f.marked),
			},
		})
	})

	return mux
}

func TestAPIClient_GetUnimportedAppointments(t *testing.T) {
	remote := &fakeRemote{appointments: []APIAppointment{
		{ID: 7, Client: "Ann", Service: "Cut", Staff: "Dr. Lee", Date: "2024-06-01", Time: "10:00"},
	}}
	srv := httptest.NewServer(remote.handler(t))
	defer srv.Close()

	got, err := NewAPIClient(srv.URL).GetUnimportedAppointments()
	if err != nil {
		t.Fatalf("GetUnimportedAppointments: %v", err)
	}
	if !reflect.DeepEqual(got, remote.appointments) {
		t.Fatalf("expected %#v, got %#v", remote.appointments, got)
	}
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(Response{Success: false, Message: "token expired"})
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL).GetUnimportedAppointments()
	if err == nil || err.Error() != "token expired" {
		t.Fatalf("expected remote message, got %v", err)
	}
}

func TestAPIClient_NonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL).GetUnimportedAppointments()
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestApp_Import(t *testing.T) {
	a, out := newTestApp(t, VariantBooking)
	if code := run(a, []string{"add", "Ann", "Cut", "Dr. Lee", "2024-06-01", "10:00"}, out); code != 0 {
		t.Fatalf("add exited %d", code)
	}
	out.Reset()

	remote := &fakeRemote{appointments: []APIAppointment{
		{ID: 1, Client: "Bob", Service: "Shave", Staff: "Dr. Lee", Date: "2024-06-01", Time: "10:00"},
		{ID: 2, Client: "Cid", Service: "Cut", Staff: "Dr. Lee", Date: "2024-06-01", Time: "11:00"},
	}}
	srv := httptest.NewServer(remote.handler(t))
	defer srv.Close()

	if code := run(a, []string{"import", srv.URL}, out); code != 0 {
		t.Fatalf("import exited %d: %s", code, out)
	}

	if !strings.Contains(out.String(), "Skipped: Dr. Lee is already booked at 2024-06-01 10:00.") {
		t.Fatalf("expected conflict to be reported, got %q", out)
	}
	if !strings.Contains(out.String(), "Imported 1 of 2 appointments.") {
		t.Fatalf("expected import summary, got %q", out)
	}
	if !reflect.DeepEqual(remote.marked, []int{2}) {
		t.Fatalf("expected only ID 2 marked, got %v", remote.marked)
	}

	appts := storedAppointments(t, a)
	if len(appts) != 2 || appts[1].Name != "Cid" {
		t.Fatalf("expected Ann and Cid stored, got %v", names(appts))
	}
}
