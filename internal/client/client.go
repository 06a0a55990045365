// Package client is a typed Go client for the patient care HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"patient-care-api/internal/account"
	"patient-care-api/internal/insight"
	"patient-care-api/internal/medication"
	"patient-care-api/internal/model"
	"patient-care-api/internal/scheduler"
)

var ErrObserverSet = errors.New("unauthorized observer already registered")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

type Client struct {
	base string
	http *http.Client

	mu             sync.Mutex
	token          string
	onUnauthorized func()
}

func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// OnUnauthorized registers the single callback run when any request gets a
// 401. The token is cleared before fn runs. Only one callback may be
// registered for the client's lifetime.
func (c *Client) OnUnauthorized(fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.onUnauthorized != nil {
		return ErrObserverSet
	}
	c.onUnauthorized = fn
	return nil
}

func (c *Client) unauthorized() {
	c.mu.Lock()
	c.token = ""
	fn := c.onUnauthorized
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if resp.StatusCode == http.StatusUnauthorized {
			c.unauthorized()
		}
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Signup registers and keeps the returned token.
func (c *Client) Signup(ctx context.Context, req account.RegisterRequest) (*account.Session, error) {
	var s account.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*account.Session, error) {
	var s account.Session
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateVitals(ctx context.Context, v model.Vitals) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPatch, "/api/users/me/vitals", v, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Book(ctx context.Context, req scheduler.BookRequest) (*model.Appointment, error) {
	var a model.Appointment
	if err := c.do(ctx, http.MethodPost, "/api/appointments/book", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Appointments(ctx context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Upcoming(ctx context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments/upcoming", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) History(ctx context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	var a model.Appointment
	if err := c.do(ctx, http.MethodPatch, "/api/appointments/"+id+"/cancel", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Reschedule(ctx context.Context, id, date, tm string) (*model.Appointment, error) {
	var a model.Appointment
	in := map[string]string{"date": date, "time": tm}
	if err := c.do(ctx, http.MethodPatch, "/api/appointments/"+id+"/reschedule", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Insights(ctx context.Context) (*insight.Result, error) {
	var res insight.Result
	if err := c.do(ctx, http.MethodGet, "/api/insights", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Medications(ctx context.Context) ([]model.Medication, error) {
	var out []model.Medication
	if err := c.do(ctx, http.MethodGet, "/api/medications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddMedication(ctx context.Context, req medication.AddRequest) (*model.Medication, error) {
	var m model.Medication
	if err := c.do(ctx, http.MethodPost, "/api/medications", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) LogMedication(ctx context.Context, id string) (*model.Medication, error) {
	var m model.Medication
	if err := c.do(ctx, http.MethodPatch, "/api/medications/"+id+"/log", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMedication(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/medications/"+id, nil, nil)
}

func (c *Client) AdminStats(ctx context.Context) (*model.Stats, error) {
	var st model.Stats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) AdminSetStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error) {
	var a model.Appointment
	in := map[string]model.AppointmentStatus{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/api/admin/appointments/"+id, in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
