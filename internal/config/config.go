package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Interfaces []string
	Addr       string
	MockMode   bool
	DBPath     string
	// WordlistDB is an optional SQLite file of stored wordlists ("db:<name>" references).
	WordlistDB string
	ConfigPath string
	Debug      bool

	// Attempt timing
	PollInterval     time.Duration
	ConnectTimeout   time.Duration
	SettleDelay      time.Duration
	ScanSettle       time.Duration
	// MockConnectDelay is how long a simulated adapter takes to associate.
	MockConnectDelay time.Duration

	ProfilePrefix  string
	NmcliPath      string
	AdminUser      string
	AdminPassword  string
	AllowedOrigins []string
	Presets        []domain.AttackPreset
}

// fileConfig is the YAML layout of the optional config file.
type fileConfig struct {
	Timing struct {
		PollInterval   string `yaml:"poll_interval"`
		ConnectTimeout string `yaml:"connect_timeout"`
		SettleDelay    string `yaml:"settle_delay"`
		ScanSettle     string `yaml:"scan_settle"`
	} `yaml:"timing"`
	Interfaces     []string     `yaml:"interfaces"`
	ProfilePrefix  string       `yaml:"profile_prefix"`
	AllowedOrigins []string     `yaml:"allowed_origins"`
	Presets        []presetFile `yaml:"presets"`
}

type presetFile struct {
	Name      string   `yaml:"name"`
	Mode      string   `yaml:"mode"`
	Adapters  []string `yaml:"adapters"`
	Primary   string   `yaml:"primary"`
	Secondary string   `yaml:"secondary"`
	Hidden    bool     `yaml:"hidden"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Interfaces:       []string{"wlan0"},
		Addr:             ":8080",
		DBPath:           getDefaultDBPath(),
		PollInterval:     500 * time.Millisecond,
		ConnectTimeout:   5 * time.Second,
		SettleDelay:      100 * time.Millisecond,
		ScanSettle:       2 * time.Second,
		MockConnectDelay: 300 * time.Millisecond,
		ProfilePrefix:    "wbrute-",
		NmcliPath:        "nmcli",
		AdminUser:        "admin",
	}
}

// Load parses command line flags, environment variables and the optional
// config file. Precedence: flags > environment > file > defaults.
func Load() (*Config, error) {
	return Parse(os.Args[1:])
}

// Parse is Load over an explicit argument list.
func Parse(args []string) (*Config, error) {
	cfg := Default()

	cfg.ConfigPath = getEnv("WBRUTE_CONFIG", "")
	if p := configFlag(args); p != "" {
		cfg.ConfigPath = p
	}
	if cfg.ConfigPath != "" {
		if err := cfg.LoadFile(cfg.ConfigPath); err != nil {
			return nil, err
		}
	}

	// Environment Variables
	ifaceStr := getEnv("WBRUTE_INTERFACE", strings.Join(cfg.Interfaces, ","))
	originStr := getEnv("WBRUTE_ALLOWED_ORIGINS", strings.Join(cfg.AllowedOrigins, ","))
	cfg.Addr = getEnv("WBRUTE_ADDR", cfg.Addr)
	cfg.MockMode = getEnvBool("WBRUTE_MOCK", cfg.MockMode)
	cfg.DBPath = getEnv("WBRUTE_DB", cfg.DBPath)
	cfg.WordlistDB = getEnv("WBRUTE_WORDLIST_DB", cfg.WordlistDB)
	cfg.Debug = getEnvBool("WBRUTE_DEBUG", cfg.Debug)
	cfg.PollInterval = getEnvDuration("WBRUTE_POLL_INTERVAL", cfg.PollInterval)
	cfg.ConnectTimeout = getEnvDuration("WBRUTE_CONNECT_TIMEOUT", cfg.ConnectTimeout)
	cfg.SettleDelay = getEnvDuration("WBRUTE_SETTLE_DELAY", cfg.SettleDelay)
	cfg.ScanSettle = getEnvDuration("WBRUTE_SCAN_SETTLE", cfg.ScanSettle)
	cfg.MockConnectDelay = getEnvDuration("WBRUTE_MOCK_DELAY", cfg.MockConnectDelay)
	cfg.ProfilePrefix = getEnv("WBRUTE_PROFILE_PREFIX", cfg.ProfilePrefix)
	cfg.NmcliPath = getEnv("WBRUTE_NMCLI", cfg.NmcliPath)
	cfg.AdminUser = getEnv("WBRUTE_ADMIN_USER", cfg.AdminUser)
	cfg.AdminPassword = getEnv("WBRUTE_ADMIN_PASSWORD", cfg.AdminPassword)

	// Command Line Flags (Override Env)
	fs := flag.NewFlagSet("wbrute", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Path to YAML config file")
	fs.StringVar(&ifaceStr, "i", ifaceStr, "Wireless interface(s) available for attacks (comma separated)")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run in mock mode (simulated adapters)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	fs.StringVar(&cfg.WordlistDB, "wordlist-db", cfg.WordlistDB, "Path to SQLite wordlist store (optional)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "Adapter status poll interval")
	fs.DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "Time allowed for one candidate to connect")
	fs.DurationVar(&cfg.SettleDelay, "settle", cfg.SettleDelay, "Pause after a failed attempt")
	fs.DurationVar(&cfg.ScanSettle, "scan-settle", cfg.ScanSettle, "Wait between triggering a scan and reading results")
	fs.DurationVar(&cfg.MockConnectDelay, "mock-delay", cfg.MockConnectDelay, "Association time of simulated adapters")
	fs.StringVar(&cfg.ProfilePrefix, "profile-prefix", cfg.ProfilePrefix, "Name prefix of connection profiles created by wbrute")
	fs.StringVar(&cfg.NmcliPath, "nmcli", cfg.NmcliPath, "Path to nmcli binary")
	fs.StringVar(&originStr, "origins", originStr, "Allowed WebSocket origins (comma separated)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Interfaces = parseList(ifaceStr)
	cfg.AllowedOrigins = parseList(originStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile applies a YAML config file on top of cfg.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"poll_interval", fc.Timing.PollInterval, &c.PollInterval},
		{"connect_timeout", fc.Timing.ConnectTimeout, &c.ConnectTimeout},
		{"settle_delay", fc.Timing.SettleDelay, &c.SettleDelay},
		{"scan_settle", fc.Timing.ScanSettle, &c.ScanSettle},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse config: timing.%s: %w", d.name, err)
		}
		*d.dst = v
	}

	if len(fc.Interfaces) > 0 {
		c.Interfaces = fc.Interfaces
	}
	if fc.ProfilePrefix != "" {
		c.ProfilePrefix = fc.ProfilePrefix
	}
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}

	seen := make(map[string]bool)
	for _, p := range fc.Presets {
		if p.Name == "" {
			return fmt.Errorf("parse config: preset without name")
		}
		if seen[p.Name] {
			return fmt.Errorf("parse config: duplicate preset %q", p.Name)
		}
		seen[p.Name] = true

		mode := domain.AdapterMode(p.Mode)
		if mode != "" && !mode.IsValid() {
			return fmt.Errorf("parse config: preset %q: %w: %q", p.Name, domain.ErrInvalidMode, p.Mode)
		}
		c.Presets = append(c.Presets, domain.AttackPreset{
			Name:      p.Name,
			Mode:      mode,
			Adapters:  p.Adapters,
			Primary:   p.Primary,
			Secondary: p.Secondary,
			Hidden:    p.Hidden,
		})
	}
	return nil
}

// Validate rejects settings the attack core cannot run with.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.ConnectTimeout < c.PollInterval {
		return fmt.Errorf("connect timeout (%s) must not be shorter than the poll interval (%s)", c.ConnectTimeout, c.PollInterval)
	}
	if c.SettleDelay < 0 || c.ScanSettle < 0 {
		return fmt.Errorf("settle delays must not be negative")
	}
	for _, iface := range c.Interfaces {
		if !domain.IsValidInterface(iface) {
			return fmt.Errorf("invalid interface name %q", iface)
		}
	}
	return nil
}

// Preset returns the named preset.
func (c *Config) Preset(name string) (domain.AttackPreset, bool) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return domain.AttackPreset{}, false
}

// configFlag finds -config before the full flag set is parsed, so the file
// can provide defaults for the other flags.
func configFlag(args []string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func parseList(s string) []string {
	var out []string
	if s == "" {
		return out
	}
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: ignoring invalid %s=%q", key, value)
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "wbrute.db"
	}

	dir := filepath.Join(home, ".wbrute")
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Printf("Warning: Could not create .wbrute directory, using current dir: %v", err)
		return "wbrute.db"
	}

	return filepath.Join(dir, "wbrute.db")
}
