// Package client talks to the streakly HTTP API.
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
	"time"

	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/backend/server/stats"
)

const defaultTimeout = 90 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Detail
}

// Client is a thin wrapper over the REST routes.
type Client struct {
	ServerURL string
	HTTP      *http.Client
}

func New(serverURL string) *Client {
	return &Client{
		ServerURL: strings.TrimRight(serverURL, "/"),
		HTTP:      &http.Client{Timeout: defaultTimeout},
	}
}

// Suggestion is the answer of the suggestion route.
type Suggestion struct {
	Content string      `json:"content"`
	Goal    models.Goal `json:"suggestion"`
}

type habitEnvelope struct {
	Habit models.Habit `json:"habit"`
}

type userEnvelope struct {
	User models.User `json:"user"`
}

func (c *Client) Habits(ctx context.Context) ([]models.Habit, error) {
	var out []models.Habit
	err := c.do(ctx, http.MethodGet, "/habits", nil, &out)
	return out, err
}

func (c *Client) AddHabit(ctx context.Context, title, timeOfDay, priority string, reminder bool) (models.Habit, error) {
	in := models.HabitInput{Title: &title, Time: &timeOfDay, Priority: &priority, Reminder: &reminder}
	var out habitEnvelope
	err := c.do(ctx, http.MethodPost, "/habits", in, &out)
	return out.Habit, err
}

// AdjustStreak moves the streak of habit id up when completed, down otherwise.
func (c *Client) AdjustStreak(ctx context.Context, id int, completed bool) (models.Habit, error) {
	var out habitEnvelope
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/habits/%d/streak", id), models.StreakUpdate{Completed: &completed}, &out)
	return out.Habit, err
}

func (c *Client) DeleteHabit(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/habits/%d", id), nil, nil)
}

func (c *Client) Goals(ctx context.Context) ([]models.Goal, error) {
	var out []models.Goal
	err := c.do(ctx, http.MethodGet, "/goals", nil, &out)
	return out, err
}

func (c *Client) DeleteGoal(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/goals/%d", id), nil, nil)
}

func (c *Client) Suggest(ctx context.Context, prompt string) (Suggestion, error) {
	var out Suggestion
	err := c.do(ctx, http.MethodPost, "/recommend_habits", models.PromptRequest{Prompt: &prompt}, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (stats.Summary, error) {
	var out stats.Summary
	err := c.do(ctx, http.MethodGet, "/stats", nil, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, username, email, password, avatar string) (models.User, error) {
	in := models.SignupRequest{Username: &username, Email: &email, Password: &password, Avatar: &avatar}
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/register", in, &out)
	return out.User, err
}

func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodPost, "/login", models.LoginRequest{Email: &email, Password: &password}, &out)
	return out, err
}

// do sends body as JSON and decodes a 2xx answer into out. Error answers become an
// *APIError carrying the server's detail.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.ServerURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(bodyBytes, &e)
		return &APIError{Status: resp.StatusCode, Detail: e.Detail}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
