package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	DB       *DBconfig
	RabbitMq *RabbitMqconfig
	Redis    *Redisconfig
	Cache    *Cacheconfig
	Srv      *Serviceconfig
	App      *Appconfig
	Log      *Loggerconfig
}

type DBconfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int    `yaml:"max_conns"`
}

type RabbitMqconfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

type Redisconfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Cacheconfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
}

type Serviceconfig struct {
	AdminServicePort string `yaml:"admin_service"`
}

type Appconfig struct {
	JwtSecret string `yaml:"jwt_secret"`
}

type Loggerconfig struct {
	Level string `yaml:"level"`
}

// DSN builds the postgres connection string for the pool. Credentials are
// escaped, so passwords may contain URL delimiters.
func (c *DBconfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: fmt.Sprintf("sslmode=disable&pool_max_conns=%d", c.MaxConns),
	}
	return u.String()
}

func (c *RabbitMqconfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + strings.TrimPrefix(c.VHost, "/"),
	}
	return u.String()
}

func New() (*Config, error) {
	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			fmt.Printf("using default key %v\n", key)
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			fmt.Printf("using default key %v\n", key)
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			fmt.Printf("cannot parse %v, using default key\n", key)
			return def
		}
		return val
	}

	getEnvBool := func(key string, def bool) bool {
		valStr := os.Getenv(key)
		if valStr == "" {
			fmt.Printf("using default key %v\n", key)
			return def
		}
		val, err := strconv.ParseBool(valStr)
		if err != nil {
			fmt.Printf("cannot parse %v, using default key\n", key)
			return def
		}
		return val
	}

	cnf := &Config{
		DB: &DBconfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "shop_user"),
			Password: getEnv("DB_PASSWORD", "shop_pass"),
			Database: getEnv("DB_NAME", "shop_db"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		RabbitMq: &RabbitMqconfig{
			Enabled:  getEnvBool("RABBITMQ_ENABLED", false),
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", "/"),
		},
		Redis: &Redisconfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: &Cacheconfig{
			Backend: strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendMemory)),
			TTL:     time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		},
		Srv: &Serviceconfig{
			AdminServicePort: getEnv("ADMIN_SERVICE_PORT", "3004"),
		},
		App: &Appconfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
		Log: &Loggerconfig{
			Level: strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		},
	}

	if err := cnf.Validate(); err != nil {
		return nil, err
	}

	return cnf, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.App.JwtSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.DB.MaxConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DB.MaxConns))
	}
	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR must be set for the redis cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL_SECONDS must not be negative"))
	}
	return errors.Join(errs...)
}
