package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type (
	APIAppointment struct {
		ID       int    `json:"id"`
		Client   string `json:"client"`
		Service  string `json:"service"`
		Staff    string `json:"staff"`
		Date     string `json:"date"`
		Time     string `json:"time"`
		Category string `json:"category"`
	}

	Response struct {
		Success bool   `json:"success"`
		Code    string `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Data    any    `json:"data,omitempty"`
	}

	AppointmentsResponse struct {
		Total        int              `json:"total"`
		Appointments []APIAppointment `json:"appointments"`
	}

	MarkImportedResponse struct {
		ImportedCount  int `json:"imported_count"`
		RemainingCount int `json:"remaining_count"`
	}
)

func (a APIAppointment) Appointment() Appointment {
	return Appointment{
		Name:     a.Client,
		Service:  a.Service,
		Staff:    a.Staff,
		Date:     a.Date,
		Time:     a.Time,
		Category: a.Category,
	}
}

type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// fetches all appointments not yet imported
func (c *APIClient) GetUnimportedAppointments() ([]APIAppointment, error) {
	url := fmt.Sprintf("%s/api/appointments", c.baseURL)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	var data AppointmentsResponse
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return data.Appointments, nil
}

// marks the given appointments as imported on the remote side
func (c *APIClient) MarkAppointmentsAsImported(ids []int) (MarkImportedResponse, error) {
	var res MarkImportedResponse

	url := fmt.Sprintf("%s/api/appointments/mark", c.baseURL)
	reqData := struct {
		AppointmentIDs []int `json:"appointment_ids"`
	}{AppointmentIDs: ids}

	reqBody, err := json.Marshal(reqData)
	if err != nil {
		return res, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return res, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, &res); err != nil {
		return res, err
	}
	return res, nil
}

// sends req and decodes the data field of the response envelope into out
func (c *APIClient) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer res.Body.Close()

	var apiRes Response
	if err := json.NewDecoder(res.Body).Decode(&apiRes); err != nil {
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", res.Status)
		}
		return fmt.Errorf("error decoding response: %w", err)
	}

	if res.StatusCode != http.StatusOK || !apiRes.Success {
		if apiRes.Message == "" {
			return fmt.Errorf("request failed with status %s", res.Status)
		}
		return fmt.Errorf("%s", apiRes.Message)
	}

	// convert the data field to the concrete type
	dataJSON, err := json.Marshal(apiRes.Data)
	if err != nil {
		return fmt.Errorf("error re-encoding data: %w", err)
	}
	if err := json.Unmarshal(dataJSON, out); err != nil {
		return fmt.Errorf("error decoding data: %w", err)
	}
	return nil
}
