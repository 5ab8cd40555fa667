// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/camwatch/internal/cameras"
	"github.com/tomtom215/camwatch/internal/config"
	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/models"
	"github.com/tomtom215/camwatch/internal/motion"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
	os.Exit(m.Run())
}

// fakeMotion records supervisor calls.
type fakeMotion struct {
	mu     sync.Mutex
	calls  []string
	status motion.Status
}

func (f *fakeMotion) Start(endpoint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "start:"+endpoint)
	f.status.State = motion.Connecting
	f.status.Endpoint = endpoint
}

func (f *fakeMotion) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "stop")
	f.status.State = motion.Disconnected
}

func (f *fakeMotion) Status() motion.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeMotion) history() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeSettings is an in-memory SettingsStore.
type fakeSettings struct {
	mu       sync.Mutex
	endpoint string
	apiHost  string
	err      error
}

func (f *fakeSettings) Endpoint() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.endpoint, f.err
}

func (f *fakeSettings) SetEndpoint(host string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.endpoint = host
	return nil
}

func (f *fakeSettings) APIHost() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apiHost, f.err
}

func (f *fakeSettings) SetAPIHost(host string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.apiHost = host
	return nil
}

func (f *fakeSettings) Snapshot() (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.endpoint, f.apiHost, f.err
}

// fakeCameras is an in-memory cameras.API. err, when set, fails every call.
type fakeCameras struct {
	mu      sync.Mutex
	host    string
	cams    map[int]cameras.Camera
	nextID  int
	started []int
	stopped []int
	alarms  int
	err     error
}

func newFakeCameras(host string) *fakeCameras {
	return &fakeCameras{host: host, cams: make(map[int]cameras.Camera), nextID: 1}
}

func (f *fakeCameras) ListCameras(context.Context) ([]cameras.Camera, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]cameras.Camera, 0, len(f.cams))
	for id := 1; id < f.nextID; id++ {
		if c, ok := f.cams[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCameras) AddCamera(_ context.Context, cam cameras.Camera) (*cameras.Camera, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cam.ID = f.nextID
	f.nextID++
	f.cams[cam.ID] = cam
	return &cam, nil
}

func (f *fakeCameras) lookup(id int) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.cams[id]; !ok {
		return &cameras.StatusError{Op: "lookup", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (f *fakeCameras) UpdateCamera(_ context.Context, id int, cam cameras.Camera) (*cameras.Camera, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lookup(id); err != nil {
		return nil, err
	}
	cam.ID = id
	f.cams[id] = cam
	return &cam, nil
}

func (f *fakeCameras) DeleteCamera(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lookup(id); err != nil {
		return err
	}
	delete(f.cams, id)
	return nil
}

func (f *fakeCameras) DeleteAllCameras(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.cams = make(map[int]cameras.Camera)
	return nil
}

func (f *fakeCameras) StartCamera(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lookup(id); err != nil {
		return err
	}
	f.started = append(f.started, id)
	return nil
}

func (f *fakeCameras) StopCamera(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lookup(id); err != nil {
		return err
	}
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeCameras) TriggerAlarm(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.alarms++
	return nil
}

type testEnv struct {
	motion   *fakeMotion
	settings *fakeSettings
	pis      map[string]*fakeCameras
	holder   *cameras.Holder
	handler  http.Handler
}

func newTestEnv(t *testing.T, apiHost string) *testEnv {
	t.Helper()
	env := &testEnv{
		motion:   &fakeMotion{},
		settings: &fakeSettings{apiHost: apiHost},
		pis:      make(map[string]*fakeCameras),
	}
	var mu sync.Mutex
	env.holder = cameras.NewHolder(func(host string) cameras.API {
		mu.Lock()
		defer mu.Unlock()
		pi, ok := env.pis[host]
		if !ok {
			pi = newFakeCameras(host)
			env.pis[host] = pi
		}
		return pi
	}, apiHost)

	h := NewHandler(Dependencies{
		Motion:    env.motion,
		Settings:  env.settings,
		Cameras:   env.holder,
		Raspberry: config.RaspberryConfig{Port: config.DefaultPiPort},
		Version:   "test",
	})
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitDisabled = true
	env.handler = NewRouter(h, cfg).Setup()
	return env
}

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func (env *testEnv) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	var env2 envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env2); err != nil {
		t.Fatalf("%s %s: decode envelope %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env2
}

func decodeData(t *testing.T, e envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(e.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t, "")
	code, resp := env.do(t, http.MethodGet, "/api/v1/health/live", "")
	if code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("got %d %q", code, resp.Status)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")

	code, resp := env.do(t, http.MethodGet, "/api/v1/health", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var health models.HealthStatus
	decodeData(t, resp, &health)
	if health.Status != "degraded" {
		t.Errorf("status = %q, want degraded while disconnected", health.Status)
	}
	if health.APIHostSet {
		t.Error("api host should not be reported as set")
	}
	if health.Version != "test" || !health.StoreOK {
		t.Errorf("health = %+v", health)
	}

	env.motion.mu.Lock()
	env.motion.status.State = motion.Connected
	env.motion.mu.Unlock()
	_, resp = env.do(t, http.MethodGet, "/api/v1/health", "")
	decodeData(t, resp, &health)
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}

	env.settings.err = errors.New("disk gone")
	_, resp = env.do(t, http.MethodGet, "/api/v1/health", "")
	decodeData(t, resp, &health)
	if health.Status != "degraded" || health.StoreOK {
		t.Errorf("health = %+v, want degraded store", health)
	}
}

func TestMotionStatus(t *testing.T) {
	env := newTestEnv(t, "")
	env.motion.Start("192.168.1.50")

	code, resp := env.do(t, http.MethodGet, "/api/v1/motion/status", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var st struct {
		State    string `json:"state"`
		Endpoint string `json:"endpoint"`
	}
	decodeData(t, resp, &st)
	if st.State != "connecting" || st.Endpoint != "192.168.1.50" {
		t.Errorf("status = %+v", st)
	}
}

func TestMotionRestart(t *testing.T) {
	env := newTestEnv(t, "")

	code, resp := env.do(t, http.MethodPost, "/api/v1/motion/restart", "")
	if code != http.StatusConflict || resp.Error == nil || resp.Error.Code != ErrCodeConflict {
		t.Fatalf("restart without endpoint: %d %+v", code, resp.Error)
	}
	if len(env.motion.history()) != 0 {
		t.Error("supervisor must not be touched without an endpoint")
	}

	env.settings.endpoint = "pi.local"
	code, _ = env.do(t, http.MethodPost, "/api/v1/motion/restart", "")
	if code != http.StatusAccepted {
		t.Fatalf("restart: status = %d", code)
	}
	got := env.motion.history()
	if len(got) != 2 || got[0] != "stop" || got[1] != "start:pi.local" {
		t.Errorf("calls = %v, want [stop start:pi.local]", got)
	}
}

func TestMotionStop(t *testing.T) {
	env := newTestEnv(t, "")
	code, _ := env.do(t, http.MethodPost, "/api/v1/motion/stop", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got := env.motion.history(); len(got) != 1 || got[0] != "stop" {
		t.Errorf("calls = %v", got)
	}
}

func TestSettings_SetEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
	}{
		{"ip address", `{"host":"192.168.1.50"}`, http.StatusOK, ""},
		{"hostname", `{"host":"raspberrypi.local"}`, http.StatusOK, ""},
		{"missing host", `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"url instead of host", `{"host":"ws://pi/ws"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed json", `{"host":`, http.StatusBadRequest, ErrCodeInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			code, resp := env.do(t, http.MethodPut, "/api/v1/settings/endpoint", tt.body)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d", code, tt.wantCode)
			}
			if tt.wantError != "" {
				if resp.Error == nil || resp.Error.Code != tt.wantError {
					t.Errorf("error = %+v, want %s", resp.Error, tt.wantError)
				}
				if env.settings.endpoint != "" || len(env.motion.history()) != 0 {
					t.Error("rejected request must not change state")
				}
				return
			}
			calls := env.motion.history()
			if len(calls) != 1 || calls[0] != "start:"+env.settings.endpoint {
				t.Errorf("calls = %v, stored = %q", calls, env.settings.endpoint)
			}
		})
	}
}

func TestSettings_SetEndpointStoreFailure(t *testing.T) {
	env := newTestEnv(t, "")
	env.settings.err = errors.New("read-only")

	code, resp := env.do(t, http.MethodPut, "/api/v1/settings/endpoint", `{"host":"10.0.0.2"}`)
	if code != http.StatusInternalServerError || resp.Error.Code != ErrCodeStoreError {
		t.Fatalf("got %d %+v", code, resp.Error)
	}
	if len(env.motion.history()) != 0 {
		t.Error("supervisor must not start when the endpoint was not saved")
	}
}

func TestSettings_GetAndSetAPIHost(t *testing.T) {
	env := newTestEnv(t, "")

	code, resp := env.do(t, http.MethodPut, "/api/v1/settings/api-host", `{"host":"10.0.0.7"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d (%+v)", code, resp.Error)
	}
	if env.holder.Host() != "10.0.0.7" {
		t.Errorf("holder host = %q", env.holder.Host())
	}

	env.settings.endpoint = "10.0.0.8"
	_, resp = env.do(t, http.MethodGet, "/api/v1/settings", "")
	var s models.Settings
	decodeData(t, resp, &s)
	if s.Endpoint != "10.0.0.8" || s.APIHost != "10.0.0.7" {
		t.Errorf("settings = %+v", s)
	}
}

func TestCameras_NoAPIHost(t *testing.T) {
	env := newTestEnv(t, "")
	code, resp := env.do(t, http.MethodGet, "/api/v1/cameras", "")
	if code != http.StatusServiceUnavailable || resp.Error.Code != ErrCodeAPIHostNotConfigured {
		t.Fatalf("got %d %+v", code, resp.Error)
	}
}

func TestCameras_Lifecycle(t *testing.T) {
	env := newTestEnv(t, "10.0.0.7")

	code, resp := env.do(t, http.MethodPost, "/api/v1/cameras", `{"name":"Porch","ip":"10.0.0.21"}`)
	if code != http.StatusCreated {
		t.Fatalf("add: %d %+v", code, resp.Error)
	}
	var cam cameras.Camera
	decodeData(t, resp, &cam)
	if cam.ID != 1 || cam.Name != "Porch" {
		t.Errorf("created = %+v", cam)
	}

	code, resp = env.do(t, http.MethodPut, "/api/v1/cameras/1", `{"name":"Front porch","ip":"10.0.0.21"}`)
	if code != http.StatusOK {
		t.Fatalf("update: %d %+v", code, resp.Error)
	}

	_, resp = env.do(t, http.MethodGet, "/api/v1/cameras", "")
	var list []cameras.Camera
	decodeData(t, resp, &list)
	if len(list) != 1 || list[0].Name != "Front porch" {
		t.Errorf("list = %+v", list)
	}

	code, resp = env.do(t, http.MethodPost, "/api/v1/cameras/1/stream", "")
	if code != http.StatusOK {
		t.Fatalf("start stream: %d %+v", code, resp.Error)
	}
	var info models.StreamInfo
	decodeData(t, resp, &info)
	if info.CameraID != 1 || info.StreamURL != "rtmp://10.0.0.7/live" {
		t.Errorf("stream = %+v", info)
	}

	if code, _ = env.do(t, http.MethodDelete, "/api/v1/cameras/1/stream", ""); code != http.StatusOK {
		t.Errorf("stop stream: %d", code)
	}
	if code, _ = env.do(t, http.MethodDelete, "/api/v1/cameras/1", ""); code != http.StatusOK {
		t.Errorf("delete: %d", code)
	}
	if code, _ = env.do(t, http.MethodPost, "/api/v1/alarm", ""); code != http.StatusAccepted {
		t.Errorf("alarm: %d", code)
	}
	if code, _ = env.do(t, http.MethodDelete, "/api/v1/cameras", ""); code != http.StatusOK {
		t.Errorf("delete all: %d", code)
	}

	pi := env.pis["10.0.0.7"]
	if len(pi.started) != 1 || len(pi.stopped) != 1 || pi.alarms != 1 {
		t.Errorf("pi saw started=%v stopped=%v alarms=%d", pi.started, pi.stopped, pi.alarms)
	}
}

func TestCameras_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"rejected", &cameras.StatusError{Op: "list_cameras", StatusCode: http.StatusUnprocessableEntity}, http.StatusBadRequest, ErrCodeCameraAPIRejected},
		{"pi server error", &cameras.StatusError{Op: "list_cameras", StatusCode: http.StatusInternalServerError}, http.StatusBadGateway, ErrCodeCameraAPIError},
		{"missing camera", &cameras.StatusError{Op: "list_cameras", StatusCode: http.StatusNotFound}, http.StatusNotFound, ErrCodeNotFound},
		{"breaker open", gobreaker.ErrOpenState, http.StatusServiceUnavailable, ErrCodeCircuitOpen},
		{"half open", gobreaker.ErrTooManyRequests, http.StatusServiceUnavailable, ErrCodeCircuitOpen},
		{"network", errors.New("connection refused"), http.StatusBadGateway, ErrCodeCameraAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "10.0.0.7")
			env.pis["10.0.0.7"].err = tt.err

			code, resp := env.do(t, http.MethodGet, "/api/v1/cameras", "")
			if code != tt.wantCode || resp.Error == nil || resp.Error.Code != tt.wantErr {
				t.Fatalf("got %d %+v, want %d %s", code, resp.Error, tt.wantCode, tt.wantErr)
			}
			if strings.Contains(resp.Error.Message, "connection refused") {
				t.Error("internal error text leaked to the client")
			}
		})
	}
}

func TestStopStream_NotRunning(t *testing.T) {
	env := newTestEnv(t, "10.0.0.7")
	env.pis["10.0.0.7"].err = &cameras.StatusError{
		Op:         "stop_camera",
		StatusCode: http.StatusNotFound,
		Body:       "Camera stream not running",
	}

	code, resp := env.do(t, http.MethodDelete, "/api/v1/cameras/1/stream", "")
	if code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeStreamNotRunning {
		t.Fatalf("error = %+v, want %s", resp.Error, ErrCodeStreamNotRunning)
	}
	if resp.Error.Message == "Camera not found" {
		t.Error("idle stream reported as a missing camera")
	}
}

func TestCameras_BadRequests(t *testing.T) {
	env := newTestEnv(t, "10.0.0.7")

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{"non-numeric id", http.MethodDelete, "/api/v1/cameras/abc", "", http.StatusBadRequest},
		{"missing name", http.MethodPost, "/api/v1/cameras", `{"ip":"10.0.0.21"}`, http.StatusBadRequest},
		{"unknown camera", http.MethodDelete, "/api/v1/cameras/42", "", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/v1/alarm", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := env.do(t, tt.method, tt.path, tt.body)
			if code != tt.wantCode {
				t.Errorf("status = %d, want %d", code, tt.wantCode)
			}
			if resp.Status != "error" {
				t.Errorf("envelope status = %q", resp.Status)
			}
		})
	}
}

func TestRequestBodyTooLarge(t *testing.T) {
	env := newTestEnv(t, "")
	body := `{"host":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	code, _ := env.do(t, http.MethodPut, "/api/v1/settings/endpoint", body)
	if code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", code)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("pi\n{\"level\":\"error\"}"); strings.Contains(got, "\n") {
		t.Errorf("newline not escaped: %q", got)
	}
	if got := sanitizeLogValue("10.0.0.7"); got != "10.0.0.7" {
		t.Errorf("clean value changed: %q", got)
	}
}

func TestResponseCarriesRequestID(t *testing.T) {
	env := newTestEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.RequestID != "abc-123" {
		t.Errorf("request_id = %q", resp.Metadata.RequestID)
	}
	if time.Since(resp.Metadata.Timestamp) > time.Minute {
		t.Errorf("timestamp = %v", resp.Metadata.Timestamp)
	}
}
