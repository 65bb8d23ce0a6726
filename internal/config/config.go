package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/jonathan-r-thorpe/nmos-js/internal/version"
)

// Defaults for values left unset by both flags and the config file.
const (
	DefaultListen   = ":8080"
	DefaultCacheTTL = 5 * time.Second
	DefaultPageSize = 10
)

// RegistryConfig represents a pre-configured registry in the config file.
type RegistryConfig struct {
	Name     string `yaml:"name"`
	QueryAPI string `yaml:"query_api"` // versioned, e.g. http://registry/x-nmos/query/v1.3
	Insecure bool   `yaml:"insecure"`
	CACert   string `yaml:"ca_cert"` // PEM file path
}

// Config holds all configuration (CLI flags + config file).
type Config struct {
	Listen          string           `yaml:"listen"`
	BasePath        string           `yaml:"base_path"`
	CacheTTL        time.Duration    `yaml:"cache_ttl"`
	PageSize        int              `yaml:"page_size"`
	DefaultRegistry string           `yaml:"default_registry"` // a registry name or a Query API URL
	Registries      []RegistryConfig `yaml:"registries"`

	// internal: path to config file (from CLI flag)
	configFile string
}

// BindFlags registers the configuration flags.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "Path to config file (YAML)")
	fs.StringVar(&c.Listen, "listen", "", "HTTP listen address")
	fs.StringVar(&c.BasePath, "base-path", "", "Path prefix the console is served under")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", 0, "How long fetched records are reused")
	fs.IntVar(&c.PageSize, "page-size", 0, "Resources per list page")
	fs.StringVar(&c.DefaultRegistry, "registry", "", "Default registry: a configured name or a Query API URL")
}

// Load overlays the config file, if one was given, onto the parsed flags and
// applies defaults. Flags take precedence over config file values.
func (c *Config) Load(fs *pflag.FlagSet) error {
	if c.configFile != "" {
		if err := c.loadFile(c.configFile, fs); err != nil {
			return err
		}
	}

	// Apply defaults for anything still unset
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	c.BasePath = strings.TrimRight(c.BasePath, "/")
	return nil
}

// loadFile reads a YAML config file. Values from the file are only applied
// if the corresponding CLI flag was not explicitly set.
func (c *Config) loadFile(path string, fs *pflag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	unset := func(name string) bool { return fs == nil || !fs.Changed(name) }
	if unset("listen") && file.Listen != "" {
		c.Listen = file.Listen
	}
	if unset("base-path") && file.BasePath != "" {
		c.BasePath = file.BasePath
	}
	if unset("cache-ttl") && file.CacheTTL != 0 {
		c.CacheTTL = file.CacheTTL
	}
	if unset("page-size") && file.PageSize != 0 {
		c.PageSize = file.PageSize
	}
	if unset("registry") && file.DefaultRegistry != "" {
		c.DefaultRegistry = file.DefaultRegistry
	}

	// Registries always come from config file
	c.Registries = file.Registries

	return nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Listen == "" {
		errs = multierror.Append(errs, errors.New("listen address is empty"))
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		errs = multierror.Append(errs, fmt.Errorf("base_path %q must start with /", c.BasePath))
	}
	if c.CacheTTL < 0 {
		errs = multierror.Append(errs, fmt.Errorf("cache_ttl %s is negative", c.CacheTTL))
	}
	if c.PageSize < 0 {
		errs = multierror.Append(errs, fmt.Errorf("page_size %d is negative", c.PageSize))
	}

	seen := map[string]bool{}
	for i, r := range c.Registries {
		if r.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("registries[%d]: missing name", i))
		} else if seen[r.Name] {
			errs = multierror.Append(errs, fmt.Errorf("registries[%d]: duplicate name %q", i, r.Name))
		}
		seen[r.Name] = true
		if err := validateQueryAPI(r.QueryAPI); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("registries[%d] (%s): %w", i, r.Name, err))
		}
		if r.CACert != "" {
			if _, err := os.Stat(r.CACert); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("registries[%d] (%s): ca_cert: %w", i, r.Name, err))
			}
		}
	}

	if c.DefaultRegistry != "" && !seen[c.DefaultRegistry] {
		if err := validateQueryAPI(c.DefaultRegistry); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("default_registry %q is neither a configured registry nor a Query API URL: %w", c.DefaultRegistry, err))
		}
	}

	return errs.ErrorOrNil()
}

func validateQueryAPI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("query_api: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("query_api %q must be an http or https URL", raw)
	}
	if _, err := version.Resolve(raw); err != nil {
		return err
	}
	return nil
}

// DefaultQueryAPI returns the Query API URL used when the browser has not
// selected one: the named default registry, a default given as a URL, or
// the only configured registry.
func (c *Config) DefaultQueryAPI() string {
	for _, r := range c.Registries {
		if r.Name == c.DefaultRegistry {
			return r.QueryAPI
		}
	}
	if c.DefaultRegistry != "" {
		return c.DefaultRegistry
	}
	if len(c.Registries) == 1 {
		return c.Registries[0].QueryAPI
	}
	return ""
}
