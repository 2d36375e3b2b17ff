// Package remote is the HTTP client for the Remote Event Service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/month-calendar/webui/internal/logging"
	"github.com/month-calendar/webui/internal/storage/models"
)

const (
	eventsEndpoint   = "/api/events"
	holidaysEndpoint = "/api/holidays"

	contentTypeHeaderKey = "Content-Type"
	jsonContentType      = "application/json"

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 4 << 20
)

// HTTPClient is the subset of *http.Client the remote client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from the Remote Event Service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("remote service returned %d: %s", e.StatusCode, e.Message)
}

// IsAPIError reports whether err carries an APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// Client talks to a single configured base URL. Every call is attempted
// exactly once.
type Client struct {
	BaseURL string
	HTTP    HTTPClient
	Log     *logrus.Entry
}

// NewClient returns a client with its own *http.Client bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, log *logrus.Entry) *Client {
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Log:     log,
	}
}

// ListEvents fetches every event. A body that is valid JSON but not an
// array is logged and read as empty.
func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	if err := c.getArray(ctx, eventsEndpoint, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListHolidays fetches the holiday list, with the same array rule as ListEvents.
func (c *Client) ListHolidays(ctx context.Context) ([]models.Holiday, error) {
	holidays := []models.Holiday{}
	if err := c.getArray(ctx, holidaysEndpoint, &holidays); err != nil {
		return nil, err
	}
	return holidays, nil
}

// CreateEvent submits a new event and returns the canonical record the
// service assigned an identity to.
func (c *Client) CreateEvent(ctx context.Context, payload models.EventPayload) (models.Event, error) {
	body, err := c.send(ctx, http.MethodPost, eventsEndpoint, payload)
	if err != nil {
		return models.Event{}, err
	}

	var created struct {
		Event *models.Event `json:"event"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return models.Event{}, fmt.Errorf("error decoding created event: %w", err)
	}
	if created.Event == nil {
		return models.Event{}, errors.New("error decoding created event: response has no event")
	}
	return *created.Event, nil
}

// UpdateEvent replaces the event identified by sn.
func (c *Client) UpdateEvent(ctx context.Context, sn int64, payload models.EventPayload) error {
	_, err := c.send(ctx, http.MethodPut, eventPath(sn), payload)
	return err
}

// DeleteEvent removes the event identified by sn.
func (c *Client) DeleteEvent(ctx context.Context, sn int64) error {
	_, err := c.send(ctx, http.MethodDelete, eventPath(sn), nil)
	return err
}

func eventPath(sn int64) string {
	return eventsEndpoint + "/" + strconv.FormatInt(sn, 10)
}

func (c *Client) getArray(ctx context.Context, path string, dst any) error {
	body, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("error decoding %s response: %w", path, err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.Log.WithField("path", path).Warn("unexpected response format, treating as empty")
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("error decoding %s response: %w", path, err)
	}
	return nil
}

// send performs one request and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error creating http request: %w", err)
	}
	if payload != nil {
		req.Header.Set(contentTypeHeaderKey, jsonContentType)
	}
	req.Header.Set("Accept", jsonContentType)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	c.Log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("remote request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}
