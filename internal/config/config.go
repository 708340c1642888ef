// Package config loads the YAML configuration shared by the demo client and
// the simulated host.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arloliu/ifsf/format"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the root of the configuration file.
type Config struct {
	Client ClientConfig `yaml:"client"`
	Host   HostConfig   `yaml:"host"`
	Log    LogConfig    `yaml:"log"`
}

// ClientConfig configures the demo client and the terminal it pretends to be.
type ClientConfig struct {
	Address         string        `yaml:"address"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
	ExchangeTimeout time.Duration `yaml:"exchange_timeout"`
	AcquirerID      string        `yaml:"acquirer_id"`
	TerminalID      string        `yaml:"terminal_id"`
	POSDataCode     string        `yaml:"pos_data_code"`
	CurrencyCode    int           `yaml:"currency_code"`
	Capture         CaptureConfig `yaml:"capture"`
}

// CaptureConfig enables recording of the client's frames.
type CaptureConfig struct {
	Path        string `yaml:"path"`
	Compression string `yaml:"compression"`
}

// HostConfig configures the simulated host.
type HostConfig struct {
	Listen         string `yaml:"listen"`
	ActionCode     int    `yaml:"action_code"`
	CardType       int    `yaml:"card_type"`
	CardAcceptorID string `yaml:"card_acceptor_id"`
	ReadBufferSize int    `yaml:"read_buffer_size"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Client: ClientConfig{
			Address:         "127.0.0.1:9000",
			DialTimeout:     10 * time.Second,
			ExchangeTimeout: 30 * time.Second,
			AcquirerID:      "280131",
			TerminalID:      "24001",
			POSDataCode:     "B0010160014C",
			CurrencyCode:    643,
			Capture:         CaptureConfig{Compression: "zstd"},
		},
		Host: HostConfig{
			Listen:         "127.0.0.1:9000",
			ActionCode:     0,
			CardType:       20,
			ReadBufferSize: 4096,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and validates the file at path. Empty keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if err := c.Host.Validate(); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}

func (c *ClientConfig) Validate() error {
	switch {
	case c.Address == "":
		return errors.New("address is required")
	case c.DialTimeout <= 0:
		return fmt.Errorf("dial_timeout must be positive, got %s", c.DialTimeout)
	case c.ExchangeTimeout <= 0:
		return fmt.Errorf("exchange_timeout must be positive, got %s", c.ExchangeTimeout)
	case c.AcquirerID == "" || len(c.AcquirerID) > 99:
		return fmt.Errorf("acquirer_id must be 1 to 99 characters, got %q", c.AcquirerID)
	case len(c.TerminalID) > 8:
		return fmt.Errorf("terminal_id longer than 8 characters: %q", c.TerminalID)
	case len(c.POSDataCode) > 12:
		return fmt.Errorf("pos_data_code longer than 12 characters: %q", c.POSDataCode)
	case c.CurrencyCode < 0 || c.CurrencyCode > 999:
		return fmt.Errorf("currency_code must have 3 digits, got %d", c.CurrencyCode)
	}
	if _, err := c.Capture.CompressionType(); err != nil {
		return err
	}

	return nil
}

// CompressionType returns the configured capture compression.
func (c *CaptureConfig) CompressionType() (format.CompressionType, error) {
	ct, ok := format.ParseCompression(c.Compression)
	if !ok {
		return 0, fmt.Errorf("unknown capture compression %q", c.Compression)
	}

	return ct, nil
}

func (c *HostConfig) Validate() error {
	switch {
	case c.Listen == "":
		return errors.New("listen is required")
	case c.ActionCode < 0 || c.ActionCode > 999:
		return fmt.Errorf("action_code must have 3 digits, got %d", c.ActionCode)
	case c.CardType < 0 || c.CardType > 999:
		return fmt.Errorf("card_type must have 3 digits, got %d", c.CardType)
	case len(c.CardAcceptorID) > 15:
		return fmt.Errorf("card_acceptor_id longer than 15 characters: %q", c.CardAcceptorID)
	case c.ReadBufferSize <= 0:
		return fmt.Errorf("read_buffer_size must be positive, got %d", c.ReadBufferSize)
	}

	return nil
}

func (c *LogConfig) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return err
	}
	switch c.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
}

// NewLogger builds a logger writing to w.
func (c *LogConfig) NewLogger(w io.Writer) (*logrus.Logger, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	level, _ := logrus.ParseLevel(c.Level)

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	if c.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return l, nil
}
