package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultAPIURL is the hosted attendance backend.
const DefaultAPIURL = "https://jc-biometric-backend.onrender.com"

// TokenFileName is the session token file kept in the user's home directory.
const TokenFileName = ".fpadmin_token"

type Config struct {
	// APIURL is the base address of the attendance API (no trailing slash).
	APIURL string `env:"FPADMIN_API_URL" envDefault:"https://jc-biometric-backend.onrender.com"`

	WebPort     string `env:"FPADMIN_WEB_PORT" envDefault:"3000"`
	MockAPIPort string `env:"FPADMIN_MOCK_PORT" envDefault:"8080"`

	// TokenFile overrides where the CLI keeps its session token (default ~/.fpadmin_token).
	TokenFile string `env:"FPADMIN_TOKEN_FILE"`

	// HTTPTimeout bounds every call to the attendance API.
	HTTPTimeout time.Duration `env:"FPADMIN_HTTP_TIMEOUT" envDefault:"15s"`

	// SecureCookies marks the dashboard session cookie Secure. Enable behind HTTPS.
	SecureCookies bool `env:"FPADMIN_SECURE_COOKIES" envDefault:"false"`

	// LoginRatePerMinute caps dashboard login attempts per client IP.
	LoginRatePerMinute int `env:"FPADMIN_LOGIN_RATE" envDefault:"10"`

	// TrustedProxies lists reverse proxy addresses or CIDR prefixes whose
	// X-Forwarded-For / X-Real-IP headers are believed. Empty means the socket
	// peer is the client.
	TrustedProxies []string `env:"FPADMIN_TRUSTED_PROXIES" envSeparator:","`

	// TLSCertFile and TLSKeyFile enable HTTPS for the dashboard when both are set.
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// LogFormat is "text" (default) or "json".
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// Env is "dev" (default) or "prod". In prod the dashboard refuses plain-HTTP API URLs.
	Env string `env:"ENV" envDefault:"dev"`

	// Mock API settings, used only by cmd/mockapi.
	MockAdminUser     string `env:"FPADMIN_MOCK_ADMIN_USER" envDefault:"admin"`
	MockAdminPassword string `env:"FPADMIN_MOCK_ADMIN_PASSWORD" envDefault:"admin"`
	MockJWTSecret     string `env:"FPADMIN_MOCK_JWT_SECRET" envDefault:"mock-secret"`
}

// Load reads an optional .env file from the working directory and then parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be expressed as defaults.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("FPADMIN_API_URL must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("FPADMIN_HTTP_TIMEOUT must be positive")
	}
	if c.LoginRatePerMinute <= 0 {
		return errors.New("FPADMIN_LOGIN_RATE must be positive")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if c.Env == "prod" && strings.HasPrefix(c.APIURL, "http://") {
		return errors.New("FPADMIN_API_URL must use https in prod")
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is a single-host prefix.
func (c Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("FPADMIN_TRUSTED_PROXIES: %w", err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("FPADMIN_TRUSTED_PROXIES: %w", err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// TokenPath returns the CLI token file location.
func (c Config) TokenPath() string {
	if c.TokenFile != "" {
		return c.TokenFile
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return TokenFileName
	}
	return filepath.Join(dir, TokenFileName)
}
