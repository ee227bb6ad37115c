package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

type ServerConfig struct {
	BooksDir       string        `yaml:"books_dir"`
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	TrustedProxies []string      `yaml:"trusted_proxies"`
	Log            LogConfig     `yaml:"log"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		BooksDir:       "books",
		Addr:           ":8000",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		TrustedProxies: []string{"127.0.0.1"},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadServerConfig starts from the defaults, applies the YAML file at path
// (when path is not empty) and then the EPUBSHELF_* environment variables.
// The result is not validated, callers apply their own overrides first and
// then call Validate.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		// only fields we know about are accepted
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if v := os.Getenv("EPUBSHELF_BOOKS_DIR"); v != "" {
		cfg.BooksDir = v
	}
	if v := os.Getenv("EPUBSHELF_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("EPUBSHELF_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EPUBSHELF_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return cfg, nil
}

func (c ServerConfig) Validate() error {
	if strings.TrimSpace(c.BooksDir) == "" {
		return errors.New("books_dir must not be empty")
	}
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr must not be empty")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return errors.New("read_timeout and write_timeout must be positive")
	}
	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("trusted_proxies: %q is neither an IP address nor a CIDR", proxy)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format %q is not one of console, json", c.Log.Format)
	}
	return nil
}

func validProxy(s string) bool {
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		return err == nil
	}
	return net.ParseIP(s) != nil
}
