// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/metrics"
)

// Contract constants of the Pi's event socket.
const (
	DefaultPort             = 5000
	DefaultPath             = "/ws"
	DefaultWatchdogInterval = 10 * time.Minute
	DefaultTitle            = "Motion detected"
)

// EndpointSource returns the last persisted endpoint host, or "" if none.
type EndpointSource interface {
	Endpoint() (string, error)
}

// Config holds Supervisor settings.
type Config struct {
	Port              int
	Path              string
	WatchdogInterval  time.Duration
	NotificationTitle string
}

// DefaultConfig returns the contract defaults.
func DefaultConfig() Config {
	return Config{
		Port:              DefaultPort,
		Path:              DefaultPath,
		WatchdogInterval:  DefaultWatchdogInterval,
		NotificationTitle: DefaultTitle,
	}
}

// Status is a point-in-time snapshot of a Supervisor.
type Status struct {
	State         State     `json:"state"`
	Endpoint      string    `json:"endpoint"`
	URL           string    `json:"url,omitempty"`
	Error         string    `json:"error,omitempty"`
	Since         time.Time `json:"since"`
	Epoch         uint64    `json:"epoch"`
	Attempt       string    `json:"attempt,omitempty"`
	Events        uint64    `json:"events"`
	WatchdogArmed bool      `json:"watchdog_armed"`
}

// Supervisor keeps one subscription to the motion endpoint alive and relays
// every payload to a Notifier.
//
// All state (connection state, endpoint, handle, epoch) is guarded by mu.
// Each Open gets a fresh epoch; callbacks carrying an older epoch are
// dropped, so a cancelled or replaced attempt can never change state.
// Reconnection happens only from Start and from watchdog ticks, never from
// a transport callback.
type Supervisor struct {
	cfg       Config
	transport Transport
	scheduler Scheduler
	source    EndpointSource
	relay     *relay
	logger    zerolog.Logger

	mu             sync.Mutex
	state          State
	failure        error
	since          time.Time
	endpoint       string
	handle         Handle
	epoch          uint64
	attempt        string
	events         uint64
	watchdogGen    uint64
	cancelWatchdog func()
	closed         bool
	onTransition   func(from, to State)
}

// NewSupervisor creates a Supervisor in the Disconnected state and starts its
// notification relay. Call Close to release the relay.
func NewSupervisor(cfg Config, transport Transport, scheduler Scheduler, source EndpointSource, notifier Notifier) *Supervisor {
	def := DefaultConfig()
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	if cfg.WatchdogInterval <= 0 {
		cfg.WatchdogInterval = def.WatchdogInterval
	}
	if cfg.NotificationTitle == "" {
		cfg.NotificationTitle = def.NotificationTitle
	}

	logger := logging.WithComponent("motion")
	return &Supervisor{
		cfg:       cfg,
		transport: transport,
		scheduler: scheduler,
		source:    source,
		relay:     newRelay(notifier, cfg.NotificationTitle, logger),
		logger:    logger,
		state:     Disconnected,
		since:     time.Now(),
	}
}

// SetTransitionHook registers fn to be called, with the supervisor lock held,
// on every state change. fn must not call back into the Supervisor.
func (s *Supervisor) SetTransitionHook(fn func(from, to State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTransition = fn
}

// Start begins supervising endpoint and arms the watchdog.
//
// An empty endpoint is logged and ignored. Start with the endpoint already
// Connecting or Connected is a no-op. A different endpoint closes the current
// socket before the new one is opened.
func (s *Supervisor) Start(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked(strings.TrimSpace(endpoint))
}

func (s *Supervisor) startLocked(endpoint string) {
	if s.closed {
		s.logger.Warn().Str("endpoint", endpoint).Msg("Start on closed motion supervisor ignored")
		return
	}
	s.armWatchdogLocked()

	if endpoint == "" {
		s.logger.Error().Err(ErrMissingEndpoint).Msg("Motion supervisor not started")
		return
	}

	if endpoint == s.endpoint && (s.state == Connecting || s.state == Connected) {
		return
	}

	if s.handle != nil {
		s.logger.Info().
			Str("old_endpoint", s.endpoint).
			Str("endpoint", endpoint).
			Msg("Replacing motion endpoint")
		s.releaseLocked("endpoint replaced")
		s.transitionLocked(Disconnected, nil)
	}

	s.endpoint = endpoint
	s.openLocked()
}

// openLocked issues one connection attempt under a new epoch.
func (s *Supervisor) openLocked() {
	s.epoch++
	s.attempt = logging.GenerateCorrelationID()
	target := s.urlFor(s.endpoint)

	s.transitionLocked(Connecting, nil)
	metrics.MotionConnectAttempts.Inc()

	s.logger.Info().
		Str("endpoint", s.endpoint).
		Str("url", target).
		Str("attempt", s.attempt).
		Uint64("epoch", s.epoch).
		Msg("Connecting to motion endpoint")

	s.handle = s.transport.Open(target, &attemptListener{sup: s, epoch: s.epoch})
}

// Stop closes the connection with a normal-closure code, cancels any pending
// attempt and disarms the watchdog. It is safe in any state.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Supervisor) stopLocked() {
	if s.cancelWatchdog != nil {
		s.cancelWatchdog()
		s.cancelWatchdog = nil
		s.watchdogGen++
	}

	if s.handle != nil {
		s.releaseLocked("client stopped")
	} else {
		s.epoch++
	}

	if s.state != Disconnected {
		s.logger.Info().Str("endpoint", s.endpoint).Msg("Motion supervisor stopped")
		s.transitionLocked(Disconnected, nil)
	}
}

// Close stops the supervisor for good and waits for queued notifications to
// be delivered.
func (s *Supervisor) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.closed = true
	s.mu.Unlock()

	s.relay.close()
}

// Status returns a snapshot of the current state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:         s.state,
		Endpoint:      s.endpoint,
		Since:         s.since,
		Epoch:         s.epoch,
		Attempt:       s.attempt,
		Events:        s.events,
		WatchdogArmed: s.cancelWatchdog != nil,
	}
	if s.endpoint != "" {
		st.URL = s.urlFor(s.endpoint)
	}
	if s.failure != nil {
		st.Error = s.failure.Error()
	}
	return st
}

// State returns the current connection state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// releaseLocked closes the current handle and invalidates its epoch.
func (s *Supervisor) releaseLocked(reason string) {
	h := s.handle
	s.handle = nil
	s.epoch++
	s.transport.Close(h, CloseNormalClosure, reason)
}

func (s *Supervisor) transitionLocked(to State, failure error) {
	from := s.state
	s.failure = failure
	if from == to {
		return
	}
	if !CanTransition(from, to) {
		// Unreachable unless a code path above is wrong.
		s.logger.Error().
			Stringer("from", from).
			Stringer("to", to).
			Msg("Invalid motion state transition")
		return
	}

	s.state = to
	s.since = time.Now()
	metrics.RecordMotionTransition(from.String(), to.String(), int(to))
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

// current reports whether epoch still identifies the live handle.
func (s *Supervisor) current(epoch uint64) bool {
	if epoch != s.epoch || s.handle == nil {
		metrics.MotionStaleCallbacks.Inc()
		return false
	}
	return true
}

func (s *Supervisor) handleOpen(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(epoch) {
		return
	}

	s.transitionLocked(Connected, nil)
	s.logger.Info().
		Str("endpoint", s.endpoint).
		Str("attempt", s.attempt).
		Msg("Motion endpoint connected")
}

func (s *Supervisor) handleMessage(epoch uint64, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(epoch) {
		return
	}

	s.events++
	metrics.MotionEventsReceived.Inc()
	s.logger.Debug().
		Uint64("seq", s.events).
		Int("bytes", len(payload)).
		Msg("Motion event received")

	s.relay.enqueue(Event{
		Seq:        s.events,
		Endpoint:   s.endpoint,
		Payload:    payload,
		ReceivedAt: time.Now(),
	})
}

func (s *Supervisor) handleClosed(epoch uint64, code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(epoch) {
		return
	}

	err := &PeerClosedError{Code: code, Reason: reason}
	metrics.MotionConnectFailures.WithLabelValues(failureKind(err)).Inc()
	s.releaseLocked("released")

	// Connecting has no Disconnected edge outside Stop.
	if s.state == Connecting {
		s.transitionLocked(Failed, err)
	} else {
		s.transitionLocked(Disconnected, err)
	}

	s.logger.Warn().
		Str("endpoint", s.endpoint).
		Int("code", code).
		Str("reason", reason).
		Msg("Motion connection closed by peer; waiting for watchdog")
}

func (s *Supervisor) handleFailed(epoch uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(epoch) {
		return
	}

	if err == nil {
		err = errors.New("unknown transport failure")
	}
	var connectErr *ConnectError
	if s.state == Connecting && !errors.As(err, &connectErr) {
		err = &ConnectError{Endpoint: s.endpoint, Err: err}
	}

	metrics.MotionConnectFailures.WithLabelValues(failureKind(err)).Inc()
	s.releaseLocked("released")
	s.transitionLocked(Failed, err)

	s.logger.Warn().
		Err(err).
		Str("endpoint", s.endpoint).
		Str("attempt", s.attempt).
		Msg("Motion connection failed; waiting for watchdog")
}

// armWatchdogLocked schedules the watchdog if it is not already running.
func (s *Supervisor) armWatchdogLocked() {
	if s.cancelWatchdog != nil {
		return
	}
	s.watchdogGen++
	gen := s.watchdogGen
	s.cancelWatchdog = s.scheduler.ScheduleRepeating(s.cfg.WatchdogInterval, func() {
		s.tick(gen)
	})
	s.logger.Debug().Dur("interval", s.cfg.WatchdogInterval).Msg("Motion watchdog armed")
}

// tick re-reads the stored endpoint and restarts the connection unless it is
// already Connected to that endpoint.
func (s *Supervisor) tick(gen uint64) {
	var stored string
	var err error
	if s.source != nil {
		stored, err = s.source.Endpoint()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.watchdogGen || s.cancelWatchdog == nil {
		return
	}

	target := strings.TrimSpace(stored)
	if err != nil {
		metrics.WatchdogTicks.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg("Watchdog could not read stored endpoint; using last known")
	}
	if target == "" {
		target = s.endpoint
	}

	switch {
	case target == "":
		metrics.WatchdogTicks.WithLabelValues("no_endpoint").Inc()
		s.logger.Error().Err(ErrMissingEndpoint).Msg("Watchdog tick skipped")
	case s.state == Connected && target == s.endpoint:
		metrics.WatchdogTicks.WithLabelValues("healthy").Inc()
	default:
		metrics.WatchdogTicks.WithLabelValues("restart").Inc()
		s.logger.Info().
			Stringer("state", s.state).
			Str("endpoint", target).
			Msg("Watchdog restarting motion connection")
		s.startLocked(target)
	}
}

func (s *Supervisor) urlFor(endpoint string) string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(endpoint, strconv.Itoa(s.cfg.Port)),
		Path:   s.cfg.Path,
	}
	return u.String()
}

// attemptListener binds transport callbacks to the epoch of one attempt.
type attemptListener struct {
	sup   *Supervisor
	epoch uint64
}

func (l *attemptListener) OnOpen(Handle) {
	l.sup.handleOpen(l.epoch)
}

func (l *attemptListener) OnMessage(_ Handle, payload string) {
	l.sup.handleMessage(l.epoch, payload)
}

func (l *attemptListener) OnClosed(_ Handle, code int, reason string) {
	l.sup.handleClosed(l.epoch, code, reason)
}

func (l *attemptListener) OnFailed(_ Handle, err error) {
	l.sup.handleFailed(l.epoch, err)
}
