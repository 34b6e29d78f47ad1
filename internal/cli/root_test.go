package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leahcim-1/rd-comment-service/internal/logger"
)

func resetGlobals() {
	configFile = ""
	benderConfig = nil
	databaseURL = ""
	debug = false
	verbose = false
	silent = false
	serveAddr = ""
	initForce = false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	err := cmd.Execute()
	return buf.String(), err
}

func TestNewRootCommand(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(ConfigEnv, "")

	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand()
		assert.Equal(t, "bender", cmd.Use)
		assert.NotEmpty(t, cmd.Version)
	})

	t.Run("has expected subcommands", func(t *testing.T) {
		cmd := NewRootCommand()

		var names []string
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		for _, expected := range []string{"init", "serve", "ping", "version"} {
			assert.Contains(t, names, expected)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		cmd := NewRootCommand()
		for _, name := range []string{"config", "url", "debug", "verbose", "silent"} {
			assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
		}
	})

	t.Run("config file is loaded", func(t *testing.T) {
		resetGlobals()
		path := writeConfig(t, t.TempDir(), "valid.yaml", `database:
  url: "postgres://localhost:5432/fromconfig"
log:
  level: info
`)

		_, err := execute(t, "--config", path, "version")
		require.NoError(t, err)
		require.NotNil(t, benderConfig)
		assert.Equal(t, "postgres://localhost:5432/fromconfig", databaseURL)
		assert.Equal(t, "info", logger.Level())
	})

	t.Run("url flag overrides config", func(t *testing.T) {
		resetGlobals()
		path := writeConfig(t, t.TempDir(), "url.yaml", "database:\n  url: postgres://localhost:5432/config\n")

		_, err := execute(t, "--config", path, "--url", "postgres://localhost:5432/override", "version")
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost:5432/override", benderConfig.Database.URL)
	})

	t.Run("invalid config warns and falls back to defaults", func(t *testing.T) {
		resetGlobals()
		path := writeConfig(t, t.TempDir(), "invalid.yaml", "server: [\n")

		out, err := execute(t, "--config", path, "version")
		require.NoError(t, err)
		assert.Contains(t, out, "Warning: Failed to load config file")
		require.NotNil(t, benderConfig)
		assert.Equal(t, ":3000", benderConfig.Server.Addr)
	})

	t.Run("missing config file warns", func(t *testing.T) {
		resetGlobals()

		out, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version")
		require.NoError(t, err)
		assert.Contains(t, out, "Warning: Failed to load config file")
	})

	t.Run("verbose enables debug logging", func(t *testing.T) {
		resetGlobals()

		_, err := execute(t, "--verbose", "version")
		require.NoError(t, err)
		assert.True(t, verbose)
		assert.Equal(t, "debug", logger.Level())
	})

	t.Run("serve without database", func(t *testing.T) {
		resetGlobals()

		_, err := execute(t, "serve")
		assert.ErrorIs(t, err, ErrNoDatabase)
	})

	t.Run("ping without database", func(t *testing.T) {
		resetGlobals()

		_, err := execute(t, "ping")
		assert.ErrorIs(t, err, ErrNoDatabase)
	})
}

func TestInitCommand(t *testing.T) {
	t.Setenv(ConfigEnv, "")

	t.Run("writes defaults to bender.yaml", func(t *testing.T) {
		chdir(t, t.TempDir())
		resetGlobals()

		out, err := execute(t, "init")
		require.NoError(t, err)
		assert.Contains(t, out, "Created bender.yaml")

		cfg, err := LoadBenderConfig("bender.yaml")
		require.NoError(t, err)
		assert.Equal(t, placeholderURL, cfg.Database.URL)
		assert.Equal(t, ":3000", cfg.Server.Addr)
		assert.Equal(t, "comment_table", cfg.Database.Table)
	})

	t.Run("stores the url flag", func(t *testing.T) {
		resetGlobals()
		path := filepath.Join(t.TempDir(), "conf", "bender.yaml")

		_, err := execute(t, "--config", path, "--url", "postgres://db:5432/comments", "init")
		require.NoError(t, err)

		cfg, err := LoadBenderConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "postgres://db:5432/comments", cfg.Database.URL)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		resetGlobals()
		path := writeConfig(t, t.TempDir(), "bender.yaml", "log:\n  level: warn\n")

		_, err := execute(t, "--config", path, "init")
		assert.ErrorContains(t, err, "already exists")

		resetGlobals()
		_, err = execute(t, "--config", path, "init", "--force")
		require.NoError(t, err)

		cfg, err := LoadBenderConfig(path)
		require.NoError(t, err)
		assert.Equal(t, placeholderURL, cfg.Database.URL)
	})
}
