// Package loadtest drives concurrent registrations against a running API
// and checks that the capacity and duplicate invariants held.
package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
)

// Options configures a run.
type Options struct {
	BaseURL     string
	Capacity    int
	Users       int
	Attempts    int // registration attempts per user
	Concurrency int
	HTTPClient  *http.Client
}

// Report is the outcome of a run.
type Report struct {
	EventID   int64
	Attempts  int
	Admitted  int
	Full      int
	Duplicate int
	Failed    int
	Stats     model.EventStats
	Results   []model.BookingResult
}

// Check verifies the invariants the run was meant to exercise.
func (r *Report) Check(opts Options) error {
	want := min(opts.Capacity, opts.Users)
	if r.Admitted != want {
		return fmt.Errorf("admitted %d registrations, want %d", r.Admitted, want)
	}
	if r.Failed > 0 {
		return fmt.Errorf("%d attempts failed unexpectedly", r.Failed)
	}
	if r.Stats.Total != r.Admitted {
		return fmt.Errorf("stats report %d registrations, %d were admitted", r.Stats.Total, r.Admitted)
	}
	if r.Stats.Total > opts.Capacity {
		return fmt.Errorf("capacity exceeded: %d > %d", r.Stats.Total, opts.Capacity)
	}
	return nil
}

func (o *Options) defaults() {
	if o.Attempts < 1 {
		o.Attempts = 1
	}
	if o.Concurrency < 1 {
		o.Concurrency = o.Users * o.Attempts
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
}

// Run creates one event and opts.Users users, then fires every registration
// attempt concurrently and tallies the responses.
func Run(ctx context.Context, opts Options) (*Report, error) {
	opts.defaults()
	c := &client{base: opts.BaseURL, http: opts.HTTPClient}

	var event model.Event
	err := c.do(ctx, http.MethodPost, "/events", model.CreateEventRequest{
		Title:    "load test " + uuid.NewString()[:8],
		DateTime: time.Now().Add(24 * time.Hour).UTC(),
		Location: "load",
		Capacity: opts.Capacity,
	}, http.StatusCreated, &event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	userIDs := make([]int64, opts.Users)
	for i := range userIDs {
		var u model.User
		err := c.do(ctx, http.MethodPost, "/users", model.CreateUserRequest{
			Name:  fmt.Sprintf("load user %d", i),
			Email: fmt.Sprintf("load-%s@example.com", uuid.NewString()),
		}, http.StatusCreated, &u)
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		userIDs[i] = u.ID
	}

	report := &Report{EventID: event.ID}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for attempt := 0; attempt < opts.Attempts; attempt++ {
		for _, userID := range userIDs {
			g.Go(func() error {
				res := c.register(gctx, event.ID, userID)
				mu.Lock()
				report.record(res)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	err = c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d/stats", event.ID), nil, http.StatusOK, &report.Stats)
	if err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	return report, nil
}

func (r *Report) record(res model.BookingResult) {
	r.Attempts++
	r.Results = append(r.Results, res)
	switch {
	case res.Status == http.StatusCreated:
		r.Admitted++
	case res.Code == "EVENT_FULL":
		r.Full++
	case res.Code == "ALREADY_REGISTERED":
		r.Duplicate++
	default:
		r.Failed++
	}
}

type client struct {
	base string
	http *http.Client
}

func (c *client) register(ctx context.Context, eventID, userID int64) model.BookingResult {
	res := model.BookingResult{UserID: userID}
	resp, err := c.send(ctx, http.MethodPost, fmt.Sprintf("/events/%d/register", eventID), model.RegisterRequest{UserID: userID})
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode
	if resp.StatusCode != http.StatusCreated {
		var e model.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			res.Err = fmt.Errorf("decode error response: %w", err)
			return res
		}
		res.Code = e.Code
	}
	return res
}

func (c *client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}
