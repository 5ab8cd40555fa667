// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/camwatch/internal/logging"
)

// Limits applied by Validate.
const (
	minWatchdogInterval = time.Second
	maxWatchdogInterval = 24 * time.Hour
	minPongWait         = time.Second
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateMotion,
		c.validateRaspberry,
		c.validateStore,
		c.validateNotify,
		c.validateServer,
		c.validateSupervisor,
		c.validateLogging,
	}

	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateMotion validates the motion listener settings.
// An empty endpoint is allowed; the listener stays disconnected until one is set.
func (c *Config) validateMotion() error {
	if c.Motion.Endpoint != "" {
		if err := ValidateHost(c.Motion.Endpoint); err != nil {
			return fmt.Errorf("SERVER_IP is invalid: %w", err)
		}
	}
	if err := validatePort(c.Motion.Port, "MOTION_PORT"); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Motion.Path, "/") {
		return fmt.Errorf("MOTION_PATH must start with /, got %q", c.Motion.Path)
	}
	if c.Motion.WatchdogInterval < minWatchdogInterval || c.Motion.WatchdogInterval > maxWatchdogInterval {
		return fmt.Errorf("MOTION_WATCHDOG_INTERVAL must be between 1s and 24h, got %v", c.Motion.WatchdogInterval)
	}
	if c.Motion.HandshakeTimeout <= 0 {
		return fmt.Errorf("MOTION_HANDSHAKE_TIMEOUT must be positive")
	}
	if c.Motion.PongWait < minPongWait {
		return fmt.Errorf("MOTION_PONG_WAIT must be at least 1s")
	}
	if c.Motion.PingInterval <= 0 || c.Motion.PingInterval >= c.Motion.PongWait {
		return fmt.Errorf("MOTION_PING_INTERVAL must be positive and shorter than MOTION_PONG_WAIT")
	}
	if strings.TrimSpace(c.Motion.NotificationTitle) == "" {
		return fmt.Errorf("MOTION_NOTIFICATION_TITLE must not be empty")
	}
	return nil
}

// validateRaspberry validates the REST API client settings.
func (c *Config) validateRaspberry() error {
	if c.Raspberry.Host != "" {
		if err := ValidateHost(c.Raspberry.Host); err != nil {
			return fmt.Errorf("RASPBERRY_IP is invalid: %w", err)
		}
	}
	if err := validatePort(c.Raspberry.Port, "RASPBERRY_PORT"); err != nil {
		return err
	}
	if c.Raspberry.Timeout <= 0 {
		return fmt.Errorf("RASPBERRY_TIMEOUT must be positive")
	}
	if c.Raspberry.StreamURL != "" {
		if err := validateStreamURL(c.Raspberry.StreamURL); err != nil {
			return fmt.Errorf("RASPBERRY_STREAM_URL is invalid: %w", err)
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	if c.Store.GCInterval < 0 {
		return fmt.Errorf("STORE_GC_INTERVAL must not be negative")
	}
	return nil
}

// validateNotify validates notifier settings (webhook only if enabled)
func (c *Config) validateNotify() error {
	w := c.Notify.Webhook
	if !w.Enabled {
		return nil
	}
	if w.URL == "" {
		return fmt.Errorf("NOTIFY_WEBHOOK_URL is required when NOTIFY_WEBHOOK_ENABLED=true")
	}
	if err := validateWebhookURL(w.URL); err != nil {
		return fmt.Errorf("NOTIFY_WEBHOOK_URL is invalid: %w", err)
	}
	if w.Timeout <= 0 {
		return fmt.Errorf("NOTIFY_WEBHOOK_TIMEOUT must be positive")
	}
	if w.RateLimit <= 0 {
		return fmt.Errorf("NOTIFY_WEBHOOK_RATE must be positive")
	}
	if w.Burst < 1 {
		return fmt.Errorf("NOTIFY_WEBHOOK_BURST must be at least 1")
	}
	return nil
}

// validateServer validates the control API settings.
func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if err := validatePort(c.Server.Port, "HTTP_PORT"); err != nil {
		return err
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateSupervisor() error {
	if c.Supervisor.FailureThreshold <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_THRESHOLD must be positive")
	}
	if c.Supervisor.FailureDecay <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_DECAY must be positive")
	}
	if c.Supervisor.FailureBackoff <= 0 || c.Supervisor.ShutdownTimeout <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_BACKOFF and SUPERVISOR_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func validatePort(port int, fieldName string) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", fieldName, port)
	}
	return nil
}
