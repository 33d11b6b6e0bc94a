package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bluesky/zoom/pkg/cache"
)

const (
	// DefaultPath is the config client's file, used when PATH_CONFIG is not set.
	DefaultPath = "configs/config.yaml"
	// OrderServicePath is the order service's file, used when PATH_CONFIG is not set.
	OrderServicePath = "configs/orderservice.yaml"
)

const (
	StoreRedis  = "redis"
	StoreBolt   = "bolt"
	StoreMemory = "memory"

	UsersMemory    = "memory"
	UsersFirestore = "firestore"
)

type Config struct {
	Service struct {
		Name string `yaml:"name"`
	} `yaml:"service"`
	Server struct {
		Host      string `yaml:"host"`
		Port      string `yaml:"port"`
		GinMode   string `yaml:"gin_mode"`
		ClientURL string `yaml:"client_url"`
	} `yaml:"server"`
	Redis struct {
		Address     string        `yaml:"address"`
		Password    string        `yaml:"password"`
		DB          int           `yaml:"db"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
	} `yaml:"redis"`

	Cache CacheConfig `yaml:"cache"`
	Users UsersConfig `yaml:"users"`

	Firestore struct {
		ProjectID             string `yaml:"project_id"`
		CredentialsFile       string `yaml:"credentials_file"`
		CredentialsJSONBase64 string `yaml:"credentials_json_base64"`
	} `yaml:"firestore"`
	RabbitMQ struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"rabbitmq"`
}

// CacheConfig selects the backing store and the TTL policy.
type CacheConfig struct {
	Store            string                   `yaml:"store"`
	Prefix           string                   `yaml:"prefix"`
	BoltPath         string                   `yaml:"bolt_path"`
	DefaultTTL       time.Duration            `yaml:"default_ttl"`
	OperationTimeout time.Duration            `yaml:"operation_timeout"`
	TTLs             map[string]time.Duration `yaml:"ttls"`
}

type UsersConfig struct {
	Store       string        `yaml:"store"`
	LookupDelay time.Duration `yaml:"lookup_delay"`
	Seed        []SeedUser    `yaml:"seed"`
}

type SeedUser struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LoadConfig reads the YAML file named by PATH_CONFIG (or DefaultPath), applies
// environment overrides and validates the result. A missing file is not an error;
// defaults and environment still apply.
func LoadConfig() (*Config, error) {
	return Load(PathFromEnv(DefaultPath))
}

// PathFromEnv returns PATH_CONFIG, or defaultPath when it is unset.
func PathFromEnv(defaultPath string) string {
	if path := os.Getenv("PATH_CONFIG"); path != "" {
		return path
	}
	return defaultPath
}

// Load is LoadConfig for an explicit path.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Service.Name = "configclient"
	cfg.Server.Port = "8080"
	cfg.Server.GinMode = "debug"
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DialTimeout = 2 * time.Second
	cfg.Cache.Store = StoreRedis
	cfg.Cache.BoltPath = "data/cache.bbolt"
	cfg.Cache.DefaultTTL = 30 * time.Minute
	cfg.Cache.OperationTimeout = 500 * time.Millisecond
	cfg.Users.Store = UsersMemory
	cfg.Users.LookupDelay = 3 * time.Second
	cfg.RabbitMQ.Exchange = "springCloudBus"
	return cfg
}

// applyEnv overrides file values with environment variables. Keys use the YAML path with
// dots replaced by underscores, e.g. REDIS_ADDRESS; PORT is accepted for server.port.
func applyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Generic keys come before their specific form so SERVER_PORT wins over PORT.
	strs := []struct {
		key string
		dst *string
	}{
		{"service.name", &cfg.Service.Name},
		{"server.host", &cfg.Server.Host},
		{"port", &cfg.Server.Port},
		{"server.port", &cfg.Server.Port},
		{"gin_mode", &cfg.Server.GinMode},
		{"server.gin_mode", &cfg.Server.GinMode},
		{"client_url", &cfg.Server.ClientURL},
		{"server.client_url", &cfg.Server.ClientURL},
		{"redis.address", &cfg.Redis.Address},
		{"redis.password", &cfg.Redis.Password},
		{"cache.store", &cfg.Cache.Store},
		{"cache.prefix", &cfg.Cache.Prefix},
		{"cache.bolt_path", &cfg.Cache.BoltPath},
		{"users.store", &cfg.Users.Store},
		{"firestore.project_id", &cfg.Firestore.ProjectID},
		{"rabbitmq.url", &cfg.RabbitMQ.URL},
		{"rabbitmq.exchange", &cfg.RabbitMQ.Exchange},
	}
	for _, s := range strs {
		if v.IsSet(s.key) {
			*s.dst = v.GetString(s.key)
		}
	}

	if v.IsSet("redis.db") {
		db, err := strconv.Atoi(v.GetString("redis.db"))
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}

	durations := map[string]*time.Duration{
		"cache.default_ttl":       &cfg.Cache.DefaultTTL,
		"cache.operation_timeout": &cfg.Cache.OperationTimeout,
		"users.lookup_delay":      &cfg.Users.LookupDelay,
	}
	for key, dst := range durations {
		if !v.IsSet(key) {
			continue
		}
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return fmt.Errorf("%s: %w", strings.ToUpper(strings.ReplaceAll(key, ".", "_")), err)
		}
		*dst = d
	}
	return nil
}

// Validate checks the invariants the services rely on.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache.default_ttl must be positive, got %v", c.Cache.DefaultTTL)
	}
	for name, ttl := range c.Cache.TTLs {
		if err := cache.ValidateCacheName(name); err != nil {
			return fmt.Errorf("cache.ttls: %w", err)
		}
		if ttl <= 0 {
			return fmt.Errorf("cache.ttls.%s must be positive, got %v", name, ttl)
		}
	}
	switch c.Cache.Store {
	case StoreRedis, StoreBolt, StoreMemory:
	default:
		return fmt.Errorf("cache.store must be one of redis, bolt, memory; got %q", c.Cache.Store)
	}
	switch c.Users.Store {
	case UsersMemory:
	case UsersFirestore:
		if c.Firestore.ProjectID == "" {
			return errors.New("firestore.project_id is required when users.store is firestore")
		}
	default:
		return fmt.Errorf("users.store must be memory or firestore; got %q", c.Users.Store)
	}
	if c.Users.LookupDelay < 0 {
		return fmt.Errorf("users.lookup_delay must not be negative, got %v", c.Users.LookupDelay)
	}
	return nil
}
