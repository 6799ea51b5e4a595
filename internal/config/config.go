package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Session backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config holds everything tiffin reads from its TOML file.
type Config struct {
	BaseURL           string
	APIPath           string
	UserAgent         string
	Referer           string
	Latitude          float64
	Longitude         float64
	RequestTimeout    time.Duration
	RateLimit         float64
	PendingAuthStatus int
	PollInterval      time.Duration
	TerminalStatuses  []string
	Theme             string

	Session     SessionConfig
	Log         LogConfig
	Credentials CredentialsConfig
}

// SessionConfig selects where credentials are persisted.
type SessionConfig struct {
	Backend string
	Path    string
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level string
	File  string
}

// CredentialsConfig describes how credentials map onto cookies and headers.
type CredentialsConfig struct {
	TokenCookie string
	Bearer      bool
	CookieRoles map[string]string
}

const (
	defaultConfigPath        = "~/.config/tiffin/config.toml"
	defaultSessionFile       = "~/.config/tiffin/session.toml"
	defaultSessionDB         = "~/.local/share/tiffin/session.db"
	defaultBaseURL           = "https://www.swiggy.com"
	defaultAPIPath           = "/dapi"
	defaultUserAgent         = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultReferer           = "https://www.swiggy.com/"
	defaultLatitude          = 12.9716
	defaultLongitude         = 77.5946
	defaultRequestTimeout    = 15 * time.Second
	defaultRateLimit         = 2.0
	defaultPendingAuthStatus = 202
	defaultPollInterval      = 30 * time.Second
	defaultLogLevel          = "warn"
	defaultTokenCookie       = "__SW"
	defaultTheme             = "auto"

	tokenRole = "token"
)

// DefaultTerminalStatuses are the order states that end monitoring.
func DefaultTerminalStatuses() []string {
	return []string{"delivered", "cancelled", "failed"}
}

// DefaultCookieRoles maps the web app's session cookies to credential roles.
func DefaultCookieRoles() map[string]string {
	return map[string]string{
		"__SW":       "token",
		"_sid":       "session_id",
		"_device_id": "device_id",
	}
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		APIPath:           defaultAPIPath,
		UserAgent:         defaultUserAgent,
		Referer:           defaultReferer,
		Latitude:          defaultLatitude,
		Longitude:         defaultLongitude,
		RequestTimeout:    defaultRequestTimeout,
		RateLimit:         defaultRateLimit,
		PendingAuthStatus: defaultPendingAuthStatus,
		PollInterval:      defaultPollInterval,
		TerminalStatuses:  DefaultTerminalStatuses(),
		Theme:             defaultTheme,
		Session: SessionConfig{
			Backend: BackendFile,
			Path:    mustExpand(defaultSessionFile),
		},
		Log: LogConfig{Level: defaultLogLevel},
		Credentials: CredentialsConfig{
			TokenCookie: defaultTokenCookie,
			Bearer:      true,
			CookieRoles: DefaultCookieRoles(),
		},
	}
}

type rawConfig struct {
	BaseURL           string   `toml:"base_url"`
	APIPath           string   `toml:"api_path"`
	UserAgent         string   `toml:"user_agent"`
	Referer           string   `toml:"referer"`
	Latitude          *float64 `toml:"latitude"`
	Longitude         *float64 `toml:"longitude"`
	RequestTimeout    int      `toml:"request_timeout"`
	RateLimit         float64  `toml:"rate_limit"`
	PendingAuthStatus int      `toml:"pending_auth_status"`
	PollInterval      int      `toml:"poll_interval"`
	TerminalStatuses  []string `toml:"terminal_statuses"`
	Theme             string   `toml:"theme"`

	Session struct {
		Backend string `toml:"backend"`
		Path    string `toml:"path"`
	} `toml:"session"`

	Log struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"log"`

	Credentials struct {
		TokenCookie string            `toml:"token_cookie"`
		Bearer      *bool             `toml:"bearer"`
		CookieRoles map[string]string `toml:"cookie_roles"`
	} `toml:"credentials"`
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.apply(raw); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	c.BaseURL = orDefault(strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/"), c.BaseURL)
	c.APIPath = orDefault(strings.TrimSpace(raw.APIPath), c.APIPath)
	c.UserAgent = orDefault(strings.TrimSpace(raw.UserAgent), c.UserAgent)
	c.Referer = orDefault(strings.TrimSpace(raw.Referer), c.Referer)
	c.Theme = strings.ToLower(orDefault(strings.TrimSpace(raw.Theme), c.Theme))

	if raw.Latitude != nil {
		c.Latitude = *raw.Latitude
	}
	if raw.Longitude != nil {
		c.Longitude = *raw.Longitude
	}
	if raw.RequestTimeout > 0 {
		c.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}
	if raw.RateLimit > 0 {
		c.RateLimit = raw.RateLimit
	}
	if raw.PendingAuthStatus != 0 {
		if raw.PendingAuthStatus < 100 || raw.PendingAuthStatus > 599 {
			return fmt.Errorf("pending_auth_status %d is not an HTTP status", raw.PendingAuthStatus)
		}
		c.PendingAuthStatus = raw.PendingAuthStatus
	}
	if raw.PollInterval < 0 {
		return fmt.Errorf("poll_interval must be positive, got %d", raw.PollInterval)
	}
	if raw.PollInterval > 0 {
		c.PollInterval = time.Duration(raw.PollInterval) * time.Second
	}
	if statuses := cleanList(raw.TerminalStatuses); len(statuses) > 0 {
		c.TerminalStatuses = statuses
	}

	switch backend := strings.ToLower(strings.TrimSpace(raw.Session.Backend)); backend {
	case "", BackendFile:
		c.Session.Backend = BackendFile
	case BackendBadger:
		c.Session.Backend = BackendBadger
		c.Session.Path = mustExpand(defaultSessionDB)
	default:
		return fmt.Errorf("unknown session backend %q", raw.Session.Backend)
	}
	if p := strings.TrimSpace(raw.Session.Path); p != "" {
		c.Session.Path = mustExpand(p)
	}

	c.Log.Level = strings.ToLower(orDefault(strings.TrimSpace(raw.Log.Level), c.Log.Level))
	if f := strings.TrimSpace(raw.Log.File); f != "" {
		c.Log.File = mustExpand(f)
	}

	c.Credentials.TokenCookie = orDefault(strings.TrimSpace(raw.Credentials.TokenCookie), c.Credentials.TokenCookie)
	if raw.Credentials.Bearer != nil {
		c.Credentials.Bearer = *raw.Credentials.Bearer
	}
	if len(raw.Credentials.CookieRoles) > 0 {
		roles := make(map[string]string, len(raw.Credentials.CookieRoles))
		for name, role := range raw.Credentials.CookieRoles {
			name, role = strings.TrimSpace(name), strings.TrimSpace(role)
			if name != "" && role != "" {
				roles[name] = role
			}
		}
		if len(roles) > 0 {
			c.Credentials.CookieRoles = roles
		}
	}
	return nil
}

// APIBase joins BaseURL and APIPath.
func (c Config) APIBase() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	path := strings.TrimSpace(c.APIPath)
	if path == "" {
		return base
	}
	return base + "/" + strings.Trim(path, "/")
}

// LogPath returns the configured log file, or the default location used by
// the logs command when none is set.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.Log.File) != "" {
		return c.Log.File
	}
	return mustExpand("~/.local/share/tiffin/tiffin.log")
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// RoleMap returns the cookie role mapping with TokenCookie as the only
// cookie carrying the token role.
func (c CredentialsConfig) RoleMap() map[string]string {
	roles := make(map[string]string, len(c.CookieRoles)+1)
	for name, role := range c.CookieRoles {
		if role == tokenRole && name != c.TokenCookie {
			continue
		}
		roles[name] = role
	}
	if c.TokenCookie != "" {
		roles[c.TokenCookie] = tokenRole
	}
	return roles
}
