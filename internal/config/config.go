// Package config resolves server settings from defaults, a .env file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/motoinvent/internal/ocr"
	"github.com/erazemk/motoinvent/internal/scan"
)

// Environment variables.
const (
	EnvDB          = "MOTOINVENT_DB"
	EnvAddr        = "MOTOINVENT_ADDR"
	EnvAdmin       = "MOTOINVENT_ADMIN"
	EnvLog         = "MOTOINVENT_LOG"
	EnvLogLevel    = "MOTOINVENT_LOG_LEVEL"
	EnvOCREngine   = "MOTOINVENT_OCR_ENGINE"
	EnvOCRLang     = "MOTOINVENT_OCR_LANG"
	EnvScanTimeout = "MOTOINVENT_SCAN_TIMEOUT"
	EnvMetrics     = "MOTOINVENT_METRICS"
)

// Config holds the server settings.
type Config struct {
	DBPath      string
	Addr        string
	AdminUser   string
	LogPath     string
	LogLevel    string
	OCREngine   string
	OCRLang     string
	ScanTimeout time.Duration
	// Metrics serves Prometheus metrics on /metrics.
	Metrics bool
	// ImportPath names a browser-exported inventory to load at startup.
	ImportPath string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:      "motoinvent.sqlite3",
		Addr:        ":8080",
		AdminUser:   "Admin",
		LogLevel:    "info",
		OCREngine:   "command",
		OCRLang:     ocr.DefaultLanguage,
		ScanTimeout: scan.DefaultTimeout,
	}
}

const usage = `Usage: motoinvent [flags]

Flags:
  -d, -db <path>           SQLite database path (default: motoinvent.sqlite3)
  -a, -addr <host:port>    listen address (default: :8080)
  -u, -user <name>         admin username on first run (default: Admin)
  -l, -log <path>          log file path (default: no file, stdout/stderr only)
  -log-level <level>       debug, info, warn or error (default: info)
  -ocr <engine>            tesseract, command or none (default: command)
  -lang <code>             OCR language (default: spa)
  -scan-timeout <dur>      recognition timeout (default: 60s)
  -metrics                 serve Prometheus metrics on /metrics
  -import <path>           replace the inventory with an exported JSON file
  -h, -help                show this help and exit

Every flag except -import can also be set with a MOTOINVENT_* environment
variable or in a .env file.
`

// Load resolves the configuration. dotenv names an optional .env file whose
// variables are added to the environment without overriding it; getenv reads
// the environment. Usage goes to out. flag.ErrHelp is returned for -h.
func Load(args []string, dotenv string, getenv func(string) string, out io.Writer) (Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", dotenv, err)
		}
	}

	cfg := Default()
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}

	fset := flag.NewFlagSet("motoinvent", flag.ContinueOnError)
	fset.SetOutput(out)
	fset.Usage = func() { fmt.Fprint(out, usage) }

	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fset.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fset.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fset.StringVar(&cfg.AdminUser, "user", cfg.AdminUser, "")
	fset.StringVar(&cfg.AdminUser, "u", cfg.AdminUser, "")
	fset.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fset.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "")
	fset.StringVar(&cfg.OCREngine, "ocr", cfg.OCREngine, "")
	fset.StringVar(&cfg.OCRLang, "lang", cfg.OCRLang, "")
	fset.DurationVar(&cfg.ScanTimeout, "scan-timeout", cfg.ScanTimeout, "")
	fset.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "")
	fset.StringVar(&cfg.ImportPath, "import", "", "")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}
	if fset.NArg() > 0 {
		fset.Usage()
		return Config{}, fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}
	if cfg.ScanTimeout <= 0 {
		return Config{}, fmt.Errorf("scan timeout must be positive, got %s", cfg.ScanTimeout)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.DBPath, EnvDB)
	set(&c.Addr, EnvAddr)
	set(&c.AdminUser, EnvAdmin)
	set(&c.LogPath, EnvLog)
	set(&c.LogLevel, EnvLogLevel)
	set(&c.OCREngine, EnvOCREngine)
	set(&c.OCRLang, EnvOCRLang)

	if v := getenv(EnvScanTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvScanTimeout, err)
		}
		c.ScanTimeout = d
	}

	if v := getenv(EnvMetrics); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetrics, err)
		}
		c.Metrics = b
	}
	return nil
}
