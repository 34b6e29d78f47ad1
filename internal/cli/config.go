package cli

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Leahcim-1/rd-comment-service/internal/comment"
	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

// ConfigEnv names the environment variable that points at the config file.
const ConfigEnv = "BENDER_CONFIG"

var configLocations = []string{"bender.yaml", "bender.yml", ".bender.yaml", ".bender.yml"}

// ErrNoDatabase is returned when neither a URL nor a host is configured.
var ErrNoDatabase = errors.New("no database configured: pass --url or provide a bender.yaml")

// BenderConfig represents the bender.yaml configuration structure
type BenderConfig struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		URL              string        `yaml:"url"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		Name             string        `yaml:"name"`
		SSLMode          string        `yaml:"sslmode"`
		MaxConnections   int           `yaml:"max_connections"`
		MaxIdle          int           `yaml:"max_idle"`
		ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime"`
		StatementTimeout time.Duration `yaml:"statement_timeout"`
		Schema           string        `yaml:"schema"`
		Table            string        `yaml:"table"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() *BenderConfig {
	config := &BenderConfig{}
	config.applyDefaults()
	return config
}

func (c *BenderConfig) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 25
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 10 * time.Minute
	}
	if c.Database.Schema == "" && c.Database.Table == "" {
		c.Database.Schema = comment.DefaultTable.Schema
	}
	if c.Database.Table == "" {
		c.Database.Table = comment.DefaultTable.Name
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// LoadBenderConfig reads path, or the first default location when path is
// empty. It returns nil without error when no file exists at a default
// location.
func LoadBenderConfig(path string) (*BenderConfig, error) {
	if path == "" {
		path = findConfig()
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config BenderConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

// GetConfigPath resolves the config file from $BENDER_CONFIG or the
// default locations.
func GetConfigPath() string {
	if path := os.Getenv(ConfigEnv); path != "" {
		return path
	}
	return findConfig()
}

func findConfig() string {
	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// SaveBenderConfig writes config as yaml, creating parent directories.
func SaveBenderConfig(config *BenderConfig, path string) error {
	if path == "" {
		path = configLocations[0]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DSN returns the connection string: url when set, otherwise one built from
// the host fields.
func (c *BenderConfig) DSN() (string, error) {
	db := c.Database
	if db.URL != "" {
		return db.URL, nil
	}
	if db.Host == "" {
		return "", ErrNoDatabase
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:   "/" + db.Name,
	}
	if db.User != "" {
		if db.Password != "" {
			u.User = url.UserPassword(db.User, db.Password)
		} else {
			u.User = url.User(db.User)
		}
	}
	q := url.Values{}
	q.Set("sslmode", db.SSLMode)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// DBConfig converts the database section into pool settings.
func (c *BenderConfig) DBConfig() (*store.DBConfig, error) {
	dsn, err := c.DSN()
	if err != nil {
		return nil, err
	}

	cfg := store.NewDBConfig(dsn)
	cfg.MaxOpenConns = c.Database.MaxConnections
	cfg.MaxIdleConns = c.Database.MaxIdle
	cfg.ConnMaxLifetime = c.Database.ConnMaxLifetime
	cfg.StatementTimeout = c.Database.StatementTimeout
	return cfg, nil
}

// Table returns the comment table named by the database section.
func (c *BenderConfig) Table() store.Table {
	return store.Table{Schema: c.Database.Schema, Name: c.Database.Table}
}
