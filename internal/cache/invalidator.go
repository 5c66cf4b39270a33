// Package cache signals presentation-layer caches that stored views have
// gone stale. The mutation layer calls Invalidate with logical view names
// after every successful write; how the signal travels is up to the
// implementation.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// ExerciseLibraryView names the shared exercise library listing.
const ExerciseLibraryView = "exercises"

// UserWorkoutsView names the workout list of one user.
func UserWorkoutsView(userID string) string {
	return "workouts:user:" + userID
}

// WorkoutView names one workout's detail view.
func WorkoutView(workoutID string) string {
	return "workout:" + workoutID
}

// Invalidator defines the cache invalidation contract.
type Invalidator interface {
	Invalidate(ctx context.Context, views ...string) error
}

// NoopInvalidator is a no-op implementation.
type NoopInvalidator struct{}

// Invalidate performs no action.
func (NoopInvalidator) Invalidate(context.Context, ...string) error { return nil }

// HTTPInvalidator posts stale view names to an upstream edge cache.
type HTTPInvalidator struct {
	client *http.Client
	url    string
	token  string
}

// NewHTTPInvalidator constructs an HTTPInvalidator.
func NewHTTPInvalidator(endpoint, token string, timeout time.Duration) *HTTPInvalidator {
	return &HTTPInvalidator{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(endpoint, "/"),
		token:  token,
	}
}

// Invalidate triggers an HTTP POST carrying the view names as JSON.
func (h *HTTPInvalidator) Invalidate(ctx context.Context, views ...string) error {
	if len(views) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string][]string{"views": views})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &InvalidationError{Status: resp.StatusCode}
	}
	return nil
}

// InvalidationError represents a non-successful invalidation response.
type InvalidationError struct {
	Status int
}

func (e *InvalidationError) Error() string {
	return "cache invalidation failed with status " + http.StatusText(e.Status)
}
