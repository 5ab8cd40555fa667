// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Contract constants of the Raspberry Pi server. The motion socket and the
// REST API share the same host and port.
const (
	DefaultPiPort     = 5000
	DefaultMotionPath = "/ws"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// The Pi host addresses here are only seeds. The live values are kept in the
// settings store (keys serverIp and raspberry_ip) and can be changed at runtime
// through the control API.
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Motion     MotionConfig     `koanf:"motion"`
	Raspberry  RaspberryConfig  `koanf:"raspberry"`
	Store      StoreConfig      `koanf:"store"`
	Notify     NotifyConfig     `koanf:"notify"`
	Server     ServerConfig     `koanf:"server"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// MotionConfig holds settings for the motion-event listener.
//
// Environment Variables:
//   - SERVER_IP: Seed for the motion endpoint host (stored as serverIp)
//   - MOTION_PORT: Event socket port (default: 5000)
//   - MOTION_PATH: Event socket path (default: /ws)
//   - MOTION_WATCHDOG_INTERVAL: Reconnect watchdog period (default: 10m)
//   - MOTION_HANDSHAKE_TIMEOUT: Websocket handshake timeout (default: 10s)
//   - MOTION_PING_INTERVAL: Keepalive ping period (default: 30s)
//   - MOTION_PONG_WAIT: Read deadline extended by each pong (default: 60s)
//   - MOTION_NOTIFICATION_TITLE: Alert title (default: Motion detected)
type MotionConfig struct {
	Endpoint          string        `koanf:"endpoint"`
	Port              int           `koanf:"port"`
	Path              string        `koanf:"path"`
	WatchdogInterval  time.Duration `koanf:"watchdog_interval"`
	HandshakeTimeout  time.Duration `koanf:"handshake_timeout"`
	PingInterval      time.Duration `koanf:"ping_interval"`
	PongWait          time.Duration `koanf:"pong_wait"`
	NotificationTitle string        `koanf:"notification_title"`
}

// RaspberryConfig holds settings for the Pi's camera REST API.
//
// Environment Variables:
//   - RASPBERRY_IP: Seed for the REST API host (stored as raspberry_ip)
//   - RASPBERRY_PORT: REST API port (default: 5000)
//   - RASPBERRY_TIMEOUT: Per-request timeout (default: 30s)
//   - RASPBERRY_STREAM_URL: RTMP URL to play after a stream start
//     (default: rtmp://<raspberry_ip>/live)
//   - RASPBERRY_CIRCUIT_BREAKER: Wrap the client in a circuit breaker (default: true)
type RaspberryConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	Timeout        time.Duration `koanf:"timeout"`
	StreamURL      string        `koanf:"stream_url"`
	CircuitBreaker bool          `koanf:"circuit_breaker"`
}

// BaseURL returns the REST API base address for host.
func (c *RaspberryConfig) BaseURL(host string) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// StreamURLFor returns the RTMP URL the Pi publishes live video to.
func (c *RaspberryConfig) StreamURLFor(host string) string {
	if c.StreamURL != "" {
		return c.StreamURL
	}
	return fmt.Sprintf("rtmp://%s/live", host)
}

// StoreConfig holds settings for the persistent settings store (BadgerDB).
//
// Environment Variables:
//   - STORE_PATH: Badger directory (default: /data/camwatch)
//   - STORE_IN_MEMORY: Keep settings in memory only (default: false)
//   - STORE_GC_INTERVAL: Value log GC interval, 0 disables (default: 10m)
type StoreConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// NotifyConfig selects the notifiers motion alerts are delivered to.
//
// Environment Variables:
//   - NOTIFY_LOG_ENABLED: Write alerts to the log (default: true)
//   - NOTIFY_HUB_ENABLED: Push alerts to /api/v1/alerts/ws subscribers (default: true)
//   - NOTIFY_WEBHOOK_ENABLED, NOTIFY_WEBHOOK_URL, NOTIFY_WEBHOOK_TIMEOUT
//   - NOTIFY_WEBHOOK_RATE, NOTIFY_WEBHOOK_BURST: Outbound rate limit
type NotifyConfig struct {
	LogEnabled bool          `koanf:"log_enabled"`
	HubEnabled bool          `koanf:"hub_enabled"`
	Webhook    WebhookConfig `koanf:"webhook"`
}

// WebhookConfig configures HTTP delivery of alerts.
type WebhookConfig struct {
	Enabled   bool          `koanf:"enabled"`
	URL       string        `koanf:"url"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"` // requests per second
	Burst     int           `koanf:"burst"`
}

// ServerConfig holds the local control API settings.
//
// Environment Variables:
//   - HTTP_ENABLED, HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
//   - CORS_ORIGINS: comma-separated
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
type ServerConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SupervisorConfig holds suture tree tuning.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional config file and the
// environment. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
