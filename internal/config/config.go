// Package config loads the process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every externally tunable setting. All fields have working
// defaults; an empty environment yields a local, emit-to-nowhere setup.
type Config struct {
	// HTTPAddr is the listen address of the inspection server.
	HTTPAddr string `env:"MUDRA_HTTP_ADDR" envDefault:":8080"`

	// DBPath overrides the sqlite database location. Empty means
	// ~/.mudra/mudra.db.
	DBPath string `env:"MUDRA_DB_PATH"`

	// UDPAddr is the token datagram target (host:port). Empty disables
	// the UDP sink.
	UDPAddr string `env:"MUDRA_UDP_ADDR"`

	// MQTTBroker is the broker URL (tcp://host:1883). Empty disables the
	// MQTT sink.
	MQTTBroker string `env:"MUDRA_MQTT_BROKER"`
	MQTTTopic  string `env:"MUDRA_MQTT_TOPIC" envDefault:"mudra/events"`

	// HookCommand, when set, is executed once per emitted token.
	HookCommand string `env:"MUDRA_HOOK"`

	// CameraID selects the capture device.
	CameraID int `env:"MUDRA_CAMERA_ID" envDefault:"0"`

	// MotionThreshold is the percentage of changed pixels that counts as
	// motion for the idle/active frame-rate switch.
	MotionThreshold float64 `env:"MUDRA_MOTION_THRESHOLD" envDefault:"1.0"`

	// Preset selects the detector tuning bundle: strict, normal or loose.
	Preset string `env:"MUDRA_PRESET" envDefault:"strict"`

	// Profile, when set, overlays a stored tuning profile on the preset.
	Profile string `env:"MUDRA_PROFILE"`

	// Tray enables the system tray UI instead of plain signal handling.
	Tray bool `env:"MUDRA_TRAY" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
