package config

import "time"

// Config holds server configuration values shared by both transports.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Relay: how often dead WebSocket handles are swept.
	HandleSweepInterval time.Duration `mapstructure:"handle_sweep_interval" yaml:"handle_sweep_interval"`

	// Poll: sweep cadence, the idle threshold after which a client is
	// considered gone, and the retained-message cap.
	IdleSweepInterval time.Duration `mapstructure:"idle_sweep_interval" yaml:"idle_sweep_interval"`
	ClientTimeout     time.Duration `mapstructure:"client_timeout" yaml:"client_timeout"`
	HistoryLimit      int           `mapstructure:"history_limit" yaml:"history_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                ":3000",
		LogLevel:            "info",
		ReadHeaderTimeout:   5 * time.Second,
		ShutdownTimeout:     5 * time.Second,
		HandleSweepInterval: time.Minute,
		IdleSweepInterval:   30 * time.Second,
		ClientTimeout:       time.Minute,
		HistoryLimit:        1000,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.HandleSweepInterval != 0 {
		c.HandleSweepInterval = other.HandleSweepInterval
	}
	if other.IdleSweepInterval != 0 {
		c.IdleSweepInterval = other.IdleSweepInterval
	}
	if other.ClientTimeout != 0 {
		c.ClientTimeout = other.ClientTimeout
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
}
