package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ps-vitor/sub2lease-seed/internal/domain"
	"gopkg.in/yaml.v2"
)

const (
	EnvMongoURI   = "MONGO_URI"
	EnvMongoDB    = "MONGO_DB"
	EnvConfigFile = "SEED_CONFIG"
	EnvLogLevel   = "SEED_LOG_LEVEL"

	DefaultMongoURI = "mongodb://localhost:27017"
	DefaultDatabase = "Sub2Lease"
	DefaultEnvFile  = ".env"
)

var ErrInvalidResource = errors.New("invalid resource")

type Config struct {
	Mongo     MongoConfig       `yaml:"mongo"`
	Resources []domain.Resource `yaml:"resources"`
	LogLevel  string            `yaml:"log_level"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Options selects where LoadConfig looks for settings. Empty fields fall
// back to DefaultEnvFile and $SEED_CONFIG.
type Options struct {
	EnvFile    string
	ConfigFile string
}

// Default returns the built-in configuration: local server, project
// database, and the three default resources.
func Default() Config {
	return Config{
		Mongo: MongoConfig{
			URI:      DefaultMongoURI,
			Database: DefaultDatabase,
		},
		Resources: domain.DefaultResources(),
		LogLevel:  "info",
	}
}

// LoadConfig layers settings in order: defaults, YAML file, environment.
// The env file only fills variables that are not already set.
func LoadConfig(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := Default()

	path := opts.ConfigFile
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFile loads path into the process environment. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file load failed (%s): %w", path, err)
	}
	return nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var file Config
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	if file.Mongo.URI != "" {
		cfg.Mongo.URI = file.Mongo.URI
	}
	if file.Mongo.Database != "" {
		cfg.Mongo.Database = file.Mongo.Database
	}
	if len(file.Resources) > 0 {
		cfg.Resources = file.Resources
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvMongoURI)); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMongoDB)); v != "" {
		cfg.Mongo.Database = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Mongo.URI) == "" {
		return fmt.Errorf("config missing mongo uri")
	}
	if strings.TrimSpace(c.Mongo.Database) == "" {
		return fmt.Errorf("config missing mongo database")
	}
	if len(c.Resources) == 0 {
		return fmt.Errorf("config has no resources")
	}
	for i, r := range c.Resources {
		if strings.TrimSpace(r.Collection) == "" {
			return fmt.Errorf("resource[%d]: %w: collection is required", i, ErrInvalidResource)
		}
		if strings.TrimSpace(r.Path) == "" {
			return fmt.Errorf("resource[%d] %s: %w: path is required", i, r.Collection, ErrInvalidResource)
		}
	}
	return nil
}

// Collections lists the configured collection names in resource order.
func (c Config) Collections() []string {
	names := make([]string, 0, len(c.Resources))
	for _, r := range c.Resources {
		names = append(names, r.Collection)
	}
	return names
}
