package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

const (
	CartStoreCookie   = "cookie"
	CartStoreRedis    = "redis"
	CartStorePostgres = "postgres"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDR" env-default:":8080"`
}

type Session struct {
	SigningKey    string        `yaml:"SESSION_SIGNING_KEY" env:"SESSION_SIGNING_KEY" env-required:"true"`
	CookieName    string        `yaml:"SESSION_COOKIE" env:"SESSION_COOKIE" env-default:"sid"`
	TTL           time.Duration `yaml:"SESSION_TTL" env:"SESSION_TTL" env-default:"720h"`
	SecureCookies bool          `yaml:"SECURE_COOKIES" env:"SECURE_COOKIES" env-default:"false"`
}

type Cart struct {
	Store        string        `yaml:"CART_STORE" env:"CART_STORE" env-default:"cookie"`
	CookieName   string        `yaml:"CART_COOKIE" env:"CART_COOKIE" env-default:"cart"`
	MaxAge       time.Duration `yaml:"CART_MAX_AGE" env:"CART_MAX_AGE" env-default:"168h"`
	WriteTimeout time.Duration `yaml:"CART_WRITE_TIMEOUT" env:"CART_WRITE_TIMEOUT" env-default:"3s"`
}

type Checkout struct {
	SubmitDelay   time.Duration `yaml:"SUBMIT_DELAY" env:"CHECKOUT_SUBMIT_DELAY" env-default:"1500ms"`
	SubmitTimeout time.Duration `yaml:"SUBMIT_TIMEOUT" env:"CHECKOUT_SUBMIT_TIMEOUT" env-default:"10s"`
	SessionTTL    time.Duration `yaml:"SESSION_TTL" env:"CHECKOUT_SESSION_TTL" env-default:"30m"`
	MaxSessions   int           `yaml:"MAX_SESSIONS" env:"CHECKOUT_MAX_SESSIONS" env-default:"10000"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"1m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type Backend struct {
	BaseURL         string        `yaml:"BACKEND_URL" env:"BACKEND_URL" env-default:"http://localhost:5000/api"`
	Timeout         time.Duration `yaml:"BACKEND_TIMEOUT" env:"BACKEND_TIMEOUT" env-default:"5s"`
	MaxFailures     uint32        `yaml:"BREAKER_MAX_FAILURES" env:"BACKEND_BREAKER_MAX_FAILURES" env-default:"5"`
	OpenStateWindow time.Duration `yaml:"BREAKER_OPEN_WINDOW" env:"BACKEND_BREAKER_OPEN_WINDOW" env-default:"30s"`
}

type Otel struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"storefront-checkout"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1"`
}

type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"LOGIN_MAX_ATTEMPTS" env-default:"5"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"LOGIN_WINDOW_SIZE" env-default:"15m"`
}

type CacheConfig struct {
	DefaultTTL       time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"10m"`
	DraftTTL         time.Duration `yaml:"draft_ttl" env:"CACHE_DRAFT_TTL" env-default:"72h"`
	MemoryMaxEntries int           `yaml:"memory_max_entries" env:"CACHE_MEMORY_MAX_ENTRIES" env-default:"10000"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Session      Session      `yaml:"session"`
	Cart         Cart         `yaml:"cart"`
	Checkout     Checkout     `yaml:"checkout"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	Backend      Backend      `yaml:"backend"`
	Otel         Otel         `yaml:"otel"`
	RateConfig   RateConfig   `yaml:"rateConfig"`
	Cache        CacheConfig  `yaml:"cache"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			configPath = defaultConfigPath
		}

	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg

}

func LoadConfigFromPath(configPath string) (*Config, error) {

	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {

	switch c.Cart.Store {
	case CartStoreCookie:
	case CartStoreRedis:
		if !c.RedisConnect.Enabled() {
			return errors.New("cart store 'redis' requires REDIS_HOST")
		}
	case CartStorePostgres:
		if c.Database.User == "" || c.Database.Name == "" {
			return errors.New("cart store 'postgres' requires PG_USER and PG_DBNAME")
		}
	default:
		return fmt.Errorf("unknown cart store %q", c.Cart.Store)
	}

	if c.Checkout.SubmitTimeout <= 0 {
		return errors.New("checkout submit timeout must be positive")
	}

	return nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) Enabled() bool {
	return r.Host != ""
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}
