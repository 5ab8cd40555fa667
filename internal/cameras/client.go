// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package cameras

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/metrics"
)

// Camera is one camera registered on the Pi.
type Camera struct {
	ID   int    `json:"id"`
	Name string `json:"name" validate:"required,max=64"`
	IP   string `json:"ip" validate:"required,max=253"`
}

// API is the set of operations the Pi supports.
type API interface {
	ListCameras(ctx context.Context) ([]Camera, error)
	AddCamera(ctx context.Context, cam Camera) (*Camera, error)
	UpdateCamera(ctx context.Context, id int, cam Camera) (*Camera, error)
	DeleteCamera(ctx context.Context, id int) error
	DeleteAllCameras(ctx context.Context) error
	StartCamera(ctx context.Context, id int) error
	StopCamera(ctx context.Context, id int) error
	TriggerAlarm(ctx context.Context) error
}

var (
	// ErrCameraNotFound matches a StatusError with HTTP 404 from any
	// operation except stop_camera.
	ErrCameraNotFound = errors.New("camera not found")

	// ErrStreamNotRunning matches a 404 from the stop endpoint, which the Pi
	// uses when the camera exists but has no stream to stop.
	ErrStreamNotRunning = errors.New("camera stream not running")

	// ErrNoAPIHost is returned when no Pi host has been configured.
	ErrNoAPIHost = errors.New("raspberry pi host not configured")
)

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 1024

// StatusError is returned when the Pi answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// opStopCamera is the operation name used by StopCamera.
const opStopCamera = "stop_camera"

// Is reports ErrCameraNotFound for 404 responses, or ErrStreamNotRunning when
// the 404 came from stopping a stream.
func (e *StatusError) Is(target error) bool {
	if e.StatusCode != http.StatusNotFound {
		return false
	}
	if e.Op == opStopCamera {
		return target == ErrStreamNotRunning
	}
	return target == ErrCameraNotFound
}

// ClientError reports whether the status is a 4xx, meaning the request was
// rejected rather than the Pi failing.
func (e *StatusError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Client calls the Pi REST API at one base address.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ API = (*Client)(nil)

// NewClient creates a client for baseURL, e.g. "http://192.168.1.20:5000".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   5,
				IdleConnTimeout:       90 * time.Second,
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

// BaseURL returns the address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CloseIdleConnections closes keep-alive connections to the Pi that are not
// carrying a request.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// ListCameras returns every camera on the Pi.
func (c *Client) ListCameras(ctx context.Context) ([]Camera, error) {
	var cams []Camera
	if err := c.do(ctx, "list_cameras", http.MethodGet, "/cameras", nil, &cams); err != nil {
		return nil, err
	}
	if cams == nil {
		cams = []Camera{}
	}
	return cams, nil
}

// AddCamera registers cam and returns the camera as stored by the Pi.
func (c *Client) AddCamera(ctx context.Context, cam Camera) (*Camera, error) {
	var out Camera
	if err := c.do(ctx, "add_camera", http.MethodPost, "/cameras", cam, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCamera replaces camera id with cam.
func (c *Client) UpdateCamera(ctx context.Context, id int, cam Camera) (*Camera, error) {
	var out Camera
	if err := c.do(ctx, "update_camera", http.MethodPut, cameraPath(id), cam, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCamera removes camera id.
func (c *Client) DeleteCamera(ctx context.Context, id int) error {
	return c.do(ctx, "delete_camera", http.MethodDelete, cameraPath(id), nil, nil)
}

// DeleteAllCameras removes every camera.
func (c *Client) DeleteAllCameras(ctx context.Context) error {
	return c.do(ctx, "delete_all_cameras", http.MethodDelete, "/cameras", nil, nil)
}

// StartCamera starts streaming from camera id.
func (c *Client) StartCamera(ctx context.Context, id int) error {
	return c.do(ctx, "start_camera", http.MethodPost, cameraPath(id)+"/start", nil, nil)
}

// StopCamera stops streaming from camera id.
func (c *Client) StopCamera(ctx context.Context, id int) error {
	return c.do(ctx, opStopCamera, http.MethodPost, cameraPath(id)+"/stop", nil, nil)
}

// TriggerAlarm sounds the alarm attached to the Pi.
func (c *Client) TriggerAlarm(ctx context.Context) error {
	return c.do(ctx, "trigger_alarm", http.MethodPost, "/alarm", nil, nil)
}

func cameraPath(id int) string {
	return "/cameras/" + strconv.Itoa(id)
}

// do sends one request and decodes a JSON response into out when out is
// non-nil and the body is not empty.
func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, op, method, path, in, out)
	elapsed := time.Since(start)
	metrics.RecordCameraAPIRequest(op, status, elapsed, err)

	logging.Debug().
		Str("operation", op).
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration", elapsed).
		Err(err).
		Msg("Camera API request")
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, in, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(snippet)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%s: read response: %w", op, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return resp.StatusCode, nil
}
