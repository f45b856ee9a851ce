package main

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	defaultAddr        = "127.0.0.1:8085"
	defaultDbPath      = "./db.db"
	defaultI18nPath    = "./i18n.json"
	defaultMaxFileSize = 20 * 1024 * 1024 // 20 MB
	defaultIdleTimeout = time.Minute
)

type config struct {
	Addr        string   `json:"addr"`
	DbPath      string   `json:"db_path"`
	Debug       bool     `json:"debug"`
	I18nPath    string   `json:"i18n_path"`
	MaxFileSize int64    `json:"max_file_size"`
	IdleTimeout duration `json:"idle_timeout"`
	AuthToken   string   `json:"auth_token"`
}

// duration accepts "90s" style strings in the config file.
type duration time.Duration

func (d *duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "duration must be a string like \"60s\"")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	*d = duration(parsed)
	return nil
}

// readCfg reads the optional JSON config at path, then applies overrides from
// the environment (and .env, if present) and finally the defaults.
func readCfg(path string) (*config, error) {
	var c config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&c); err != nil {
			return nil, errors.Wrapf(err, "failed to decode config %s", path)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, errors.Wrap(err, "failed to open config")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "failed to load .env")
	}
	if err := applyEnv(&c); err != nil {
		return nil, err
	}

	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	if c.DbPath == "" {
		c.DbPath = defaultDbPath
	}
	if c.I18nPath == "" {
		c.I18nPath = defaultI18nPath
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = defaultMaxFileSize
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = duration(defaultIdleTimeout)
	}
	return &c, nil
}

func applyEnv(c *config) error {
	if v := os.Getenv("READSTREAK_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("READSTREAK_DB_PATH"); v != "" {
		c.DbPath = v
	}
	if v := os.Getenv("READSTREAK_AUTH_TOKEN"); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv("READSTREAK_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid READSTREAK_DEBUG %q", v)
		}
		c.Debug = debug
	}
	return nil
}
