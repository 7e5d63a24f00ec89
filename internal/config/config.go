package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	DatabasePath      string        `mapstructure:"db_path" yaml:"db_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	DefaultRoom       string        `mapstructure:"default_room" yaml:"default_room"`
	HistoryLimit      int           `mapstructure:"history_limit" yaml:"history_limit"`
	EventBuffer       int           `mapstructure:"event_buffer" yaml:"event_buffer"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	JWTSecret         string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer         string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience       string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		DatabasePath:      "roomtalk.db",
		LogLevel:          "info",
		DefaultRoom:       "public-chat",
		HistoryLimit:      50,
		EventBuffer:       16,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		JWTSecret:         "dev-secret-change-me",
		JWTIssuer:         "roomtalk",
		JWTAudience:       "roomtalk-clients",
	}
}
