package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS     = 15
	DefaultQuality = 23
	DefaultDPI     = 72
	DefaultQRSize  = 256
)

// Encoder names accepted by Config.Encoder.
const (
	EncoderAuto   = "auto"
	EncoderFFmpeg = "ffmpeg"
	EncoderMJPEG  = "mjpeg"
)

type Config struct {
	ScriptPath   string `yaml:"-"`
	ResourceDir  string `yaml:"resource_dir"`
	OutputVideo  string `yaml:"output"`
	PlanOutput   string `yaml:"plan"`
	FPS          int    `yaml:"fps"`
	Encoder      string `yaml:"encoder"`
	VideoCodec   string `yaml:"codec"`
	Quality      int    `yaml:"quality"`
	JPEGQuality  int    `yaml:"jpeg_quality"`
	DPI          int    `yaml:"dpi"`
	QRSize       int    `yaml:"qr_size"`
	MemoryGuard  bool   `yaml:"memory_guard"`
	ShowStats    bool   `yaml:"stats"`
	Verbose      bool   `yaml:"verbose"`
	BuildVersion string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		ResourceDir: ".",
		FPS:         DefaultFPS,
		Encoder:     EncoderAuto,
		Quality:     DefaultQuality,
		JPEGQuality: 90,
		DPI:         DefaultDPI,
		QRSize:      DefaultQRSize,
		MemoryGuard: true,
	}
}

// Load reads a YAML config file over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	switch c.Encoder {
	case EncoderAuto, EncoderFFmpeg, EncoderMJPEG:
	default:
		return fmt.Errorf("unknown encoder %q", c.Encoder)
	}
	if c.JPEGQuality < 0 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be within [0, 100], got %d", c.JPEGQuality)
	}
	return nil
}
