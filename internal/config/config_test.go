package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	c := &Config{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse(args))
	return c, c.Load(fs)
}

func TestLoad_Defaults(t *testing.T) {
	c, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, DefaultListen, c.Listen)
	assert.Equal(t, DefaultCacheTTL, c.CacheTTL)
	assert.Equal(t, DefaultPageSize, c.PageSize)
	assert.Empty(t, c.DefaultQueryAPI())
}

func TestLoad_FileAndFlagPrecedence(t *testing.T) {
	path := writeConfig(t, `
listen: ":9000"
base_path: /ui/
cache_ttl: 30s
page_size: 25
default_registry: lab
registries:
  - name: lab
    query_api: http://lab:8010/x-nmos/query/v1.3
  - name: studio
    query_api: https://studio/x-nmos/query/v1.2
    insecure: true
`)
	c, err := parse(t, "--config", path, "--listen", ":7000")
	require.NoError(t, err)

	assert.Equal(t, ":7000", c.Listen, "flag wins over file")
	assert.Equal(t, "/ui", c.BasePath)
	assert.Equal(t, 30*time.Second, c.CacheTTL)
	assert.Equal(t, 25, c.PageSize)
	require.Len(t, c.Registries, 2)
	assert.True(t, c.Registries[1].Insecure)
	assert.Equal(t, "http://lab:8010/x-nmos/query/v1.3", c.DefaultQueryAPI())
	assert.NoError(t, c.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := parse(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := parse(t, "--config", writeConfig(t, "registries: [unclosed"))
	assert.Error(t, err)
}

func TestDefaultQueryAPI(t *testing.T) {
	c := &Config{Registries: []RegistryConfig{{Name: "only", QueryAPI: "http://only/x-nmos/query/v1.1"}}}
	assert.Equal(t, "http://only/x-nmos/query/v1.1", c.DefaultQueryAPI())

	c.DefaultRegistry = "http://other/x-nmos/query/v1.0"
	assert.Equal(t, "http://other/x-nmos/query/v1.0", c.DefaultQueryAPI())
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	c := &Config{
		Listen:          ":8080",
		BasePath:        "ui",
		PageSize:        -1,
		DefaultRegistry: "nowhere",
		Registries: []RegistryConfig{
			{Name: "a", QueryAPI: "http://a/x-nmos/query/v1.3"},
			{Name: "a", QueryAPI: "http://a2/x-nmos/query/latest"},
			{QueryAPI: "ftp://b/x-nmos/query/v1.3"},
		},
	}
	err := c.Validate()
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "err is %T", err)
	// base_path, page_size, duplicate name, bad version, missing name,
	// bad scheme, default registry
	assert.Len(t, merr.Errors, 7)
	assert.True(t, strings.Contains(err.Error(), "duplicate name"))
}
