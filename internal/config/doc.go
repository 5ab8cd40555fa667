// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package config provides centralized configuration management for camwatch.

Configuration is loaded with Koanf v2 in three layers, each overriding the
previous one:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/camwatch/config.yaml
 3. Environment variables, mapped explicitly in envMappings

# Configuration Structure

  - MotionConfig: motion-event socket (port 5000, path /ws) and watchdog period
  - RaspberryConfig: camera REST API client and RTMP stream URL
  - StoreConfig: BadgerDB settings store location
  - NotifyConfig: log, alert hub and webhook notifiers
  - ServerConfig: local control API
  - SupervisorConfig: suture restart tuning
  - LoggingConfig: zerolog level and format

# Pi Addresses

SERVER_IP and RASPBERRY_IP only seed the settings store on first start. After
that the stored values win and are changed through the control API:

	PUT /api/v1/settings/endpoint   {"host": "10.0.0.5"}
	PUT /api/v1/settings/api-host   {"host": "10.0.0.5"}

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(cfg.Server.Addr())
*/
package config
