package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_ADDR is the host:port of a running relay; the suites are skipped without it
	RelayAddr    string `envconfig:"RELAY_ADDR"`
	MaxFrameSize int    `envconfig:"MAX_FRAME_SIZE" default:"4096"`
	// E2E_DEBUG_FRAMES logs every frame received by the test clients
	DebugFrames bool `envconfig:"E2E_DEBUG_FRAMES" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
