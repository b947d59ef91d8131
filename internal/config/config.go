// Package config loads the tunables shared by the three cores from
// YAML, the way AIStore's own daemons (and newtron, dittofs)
// externalize constants instead of hardcoding them.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// WLAN holds the iface-manager tunables named in and 9.
type WLAN struct {
	ReconnectMinInterval time.Duration `yaml:"reconnect_min_interval"`
	ReconnectMaxInterval time.Duration `yaml:"reconnect_max_interval"`
	MaxConnectAttempts   uint8         `yaml:"max_connect_attempts"`
	DurationBetweenRoamScans time.Duration `yaml:"duration_between_roam_scans"`
	ThresholdBadConnection   float64       `yaml:"threshold_bad_connection"`
}

// NodeGroup holds the node-group matcher tunables.
type NodeGroup struct {
	MaxNameLength int `yaml:"max_name_length"`
}

// Manifest holds the component manifest validator's field-length limits.
type Manifest struct {
	MaxPathLength         int `yaml:"max_path_length"`
	MaxRelativePathLength int `yaml:"max_relative_path_length"`
	MaxNameLength         int `yaml:"max_name_length"`
	MaxURLLength          int `yaml:"max_url_length"`
}

type Config struct {
	WLAN      WLAN      `yaml:"wlan"`
	NodeGroup NodeGroup `yaml:"node_group"`
	Manifest  Manifest  `yaml:"manifest"`
}

// Default mirrors the well-known constants: the 1s/10s
// reconnect bounds, the 3-attempt connect cap, the 5-minute roam-scan
// gap, the (intentionally disabling) 0.0 bad-connection threshold, and
// the field-length boundaries the manifest validator enforces.
func Default() *Config {
	return &Config{
		WLAN: WLAN{
			ReconnectMinInterval:     time.Second,
			ReconnectMaxInterval:     10 * time.Second,
			MaxConnectAttempts:       3,
			DurationBetweenRoamScans: 5 * time.Minute,
			ThresholdBadConnection:   0.0,
		},
		NodeGroup: NodeGroup{
			MaxNameLength: 128,
		},
		Manifest: Manifest{
			MaxPathLength:         1024,
			MaxRelativePathLength: 1024,
			MaxNameLength:         100,
			MaxURLLength:          4096,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}
