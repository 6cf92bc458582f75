package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Settings is the resolved client configuration. Values come from the config
// file, TALLY_ environment variables and flags, in viper's usual order.
type Settings struct {
	ServerURL       string
	DefaultCurrency string
	DefaultPageSize int
	CachePath       string
	CredentialPath  string
	RequestTimeout  time.Duration
}

// Defaults every install starts from. PKR mirrors the ledger service's own
// account default.
const (
	DefaultServerURL = "http://localhost:8080/api"
	DefaultCurrency  = "PKR"
	DefaultPageSize  = 10
	DefaultCachePath = "~/.local/share/tally/cache.db"
	DefaultTimeout   = 15 * time.Second
)

// Load reads settings from viper.
func Load() (*Settings, error) {
	viper.SetDefault("server.url", DefaultServerURL)
	viper.SetDefault("server.timeout", DefaultTimeout)
	viper.SetDefault("defaults.currency", DefaultCurrency)
	viper.SetDefault("defaults.page_size", DefaultPageSize)
	viper.SetDefault("cache.path", DefaultCachePath)

	s := &Settings{
		ServerURL:       viper.GetString("server.url"),
		DefaultCurrency: viper.GetString("defaults.currency"),
		DefaultPageSize: viper.GetInt("defaults.page_size"),
		CachePath:       ExpandPath(viper.GetString("cache.path")),
		CredentialPath:  ExpandPath(viper.GetString("auth.credential_path")),
		RequestTimeout:  viper.GetDuration("server.timeout"),
	}
	if s.ServerURL == "" {
		return nil, fmt.Errorf("server.url must not be empty")
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = DefaultTimeout
	}
	if s.DefaultPageSize <= 0 {
		s.DefaultPageSize = DefaultPageSize
	}
	return s, nil
}
