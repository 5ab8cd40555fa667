// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/camwatch/config.yaml",
	"/etc/camwatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
func defaultConfig() *Config {
	return &Config{
		Motion: MotionConfig{
			Endpoint:          "",
			Port:              DefaultPiPort,
			Path:              DefaultMotionPath,
			WatchdogInterval:  10 * time.Minute,
			HandshakeTimeout:  10 * time.Second,
			PingInterval:      30 * time.Second,
			PongWait:          60 * time.Second,
			NotificationTitle: "Motion detected",
		},
		Raspberry: RaspberryConfig{
			Host:           "",
			Port:           DefaultPiPort,
			Timeout:        30 * time.Second,
			StreamURL:      "",
			CircuitBreaker: true,
		},
		Store: StoreConfig{
			Path:       "/data/camwatch",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		Notify: NotifyConfig{
			LogEnabled: true,
			HubEnabled: true,
			Webhook: WebhookConfig{
				Enabled:   false,
				URL:       "",
				Timeout:   10 * time.Second,
				RateLimit: 1,
				Burst:     5,
			},
		},
		Server: ServerConfig{
			Enabled:           true,
			Host:              "127.0.0.1",
			Port:              5080,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf layers three koanf sources, later ones winning:
//
//  1. defaultConfig, through the structs provider
//  2. the first YAML file found by findConfigFile, if any
//  3. the environment variables listed in envMappings
//
// The merged tree is unmarshalled and validated.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// findConfigFile returns $CONFIG_PATH when it names an existing file,
// otherwise the first of DefaultConfigPaths that exists, otherwise "".
func findConfigFile() string {
	candidates := DefaultConfigPaths
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		candidates = append([]string{p}, candidates...)
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// listKeys are config paths whose environment value is a comma separated
// list.
var listKeys = map[string]bool{
	"server.cors_origins": true,
}

// envValue maps one environment variable onto its config path. Returning ""
// makes the provider skip the variable: unmapped names and empty lists.
func envValue(key, value string) (string, any) {
	path := envTransformFunc(key)
	if path == "" || !listKeys[path] {
		return path, value
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return "", nil
	}
	return path, items
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot pollute config.
var envMappings = map[string]string{
	// Motion listener
	"server_ip":                 "motion.endpoint",
	"motion_endpoint":           "motion.endpoint",
	"motion_port":               "motion.port",
	"motion_path":               "motion.path",
	"motion_watchdog_interval":  "motion.watchdog_interval",
	"motion_handshake_timeout":  "motion.handshake_timeout",
	"motion_ping_interval":      "motion.ping_interval",
	"motion_pong_wait":          "motion.pong_wait",
	"motion_notification_title": "motion.notification_title",

	// Raspberry Pi REST API
	"raspberry_ip":              "raspberry.host",
	"raspberry_port":            "raspberry.port",
	"raspberry_timeout":         "raspberry.timeout",
	"raspberry_stream_url":      "raspberry.stream_url",
	"raspberry_circuit_breaker": "raspberry.circuit_breaker",

	// Settings store
	"store_path":        "store.path",
	"store_in_memory":   "store.in_memory",
	"store_gc_interval": "store.gc_interval",

	// Notifiers
	"notify_log_enabled":     "notify.log_enabled",
	"notify_hub_enabled":     "notify.hub_enabled",
	"notify_webhook_enabled": "notify.webhook.enabled",
	"notify_webhook_url":     "notify.webhook.url",
	"notify_webhook_timeout": "notify.webhook.timeout",
	"notify_webhook_rate":    "notify.webhook.rate_limit",
	"notify_webhook_burst":   "notify.webhook.burst",

	// Control API
	"http_enabled":        "server.enabled",
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",

	// Supervisor tree
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - SERVER_IP -> motion.endpoint
//   - RASPBERRY_IP -> raspberry.host
//   - NOTIFY_WEBHOOK_URL -> notify.webhook.url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
