package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// HTTP
	HTTPPort    string   `yaml:"http_port"`
	CORSOrigins []string `yaml:"cors_origins"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Store: mongo | timescale | memory
	StoreBackend string `yaml:"store_backend"`

	// MongoDB
	MongoURL string `yaml:"mongo_url"`
	DBName   string `yaml:"db_name"`

	// TimescaleDB
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBMaxConns int32  `yaml:"db_max_conns"`

	// Redis
	RedisEnabled  bool   `yaml:"redis_enabled"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Reasoning service
	ReasoningBaseURL        string `yaml:"reasoning_base_url"`
	ReasoningAPIKey         string `yaml:"reasoning_api_key"`
	ReasoningModel          string `yaml:"reasoning_model"`
	ReasoningTimeoutSeconds int    `yaml:"reasoning_timeout_seconds"`
	ReasoningRetry          bool   `yaml:"reasoning_retry"`

	// Pipeline channels
	DBChannelSize    int `yaml:"db_channel_size"`
	StateChannelSize int `yaml:"state_channel_size"`
	AlertChannelSize int `yaml:"alert_channel_size"`

	// Batch writer tuning
	DBBatchSize       int `yaml:"db_batch_size"`
	DBFlushIntervalMS int `yaml:"db_flush_interval_ms"`

	// Worker counts
	DBWriterWorkers    int `yaml:"db_writer_workers"`
	StateWriterWorkers int `yaml:"state_writer_workers"`
	AlertWorkers       int `yaml:"alert_workers"`

	// Alerts
	AlertDedupTTLSeconds  int    `yaml:"alert_dedup_ttl_seconds"`
	AlertTransitionPolicy string `yaml:"alert_transition_policy"`
	AlertListDefaultLimit int    `yaml:"alert_list_default_limit"`
	AlertListMaxLimit     int    `yaml:"alert_list_max_limit"`

	// Startup / stubs
	SeedOnStartup        bool `yaml:"seed_on_startup"`
	DroneDispatchDelayMS int  `yaml:"drone_dispatch_delay_ms"`
}

func Default() *Config {
	return &Config{
		HTTPPort:                "8001",
		CORSOrigins:             []string{"*"},
		LogLevel:                "info",
		LogFormat:               "json",
		StoreBackend:            "mongo",
		MongoURL:                "mongodb://localhost:27017",
		DBName:                  "intentguard",
		DBHost:                  "localhost",
		DBPort:                  "5432",
		DBUser:                  "intentguard",
		DBPassword:              "intentguard",
		DBMaxConns:              15,
		RedisEnabled:            true,
		RedisAddr:               "localhost:6379",
		RedisDB:                 0,
		ReasoningBaseURL:        "https://api.openai.com/v1",
		ReasoningModel:          "gpt-5.2",
		ReasoningTimeoutSeconds: 12,
		ReasoningRetry:          true,
		DBChannelSize:           10000,
		StateChannelSize:        10000,
		AlertChannelSize:        1000,
		DBBatchSize:             500,
		DBFlushIntervalMS:       100,
		DBWriterWorkers:         4,
		StateWriterWorkers:      2,
		AlertWorkers:            3,
		AlertDedupTTLSeconds:    300,
		AlertTransitionPolicy:   "permissive",
		AlertListDefaultLimit:   50,
		AlertListMaxLimit:       500,
		SeedOnStartup:           true,
		DroneDispatchDelayMS:    1000,
	}
}

// Load starts from Default, applies the YAML file named by CONFIG_FILE if
// set, then lets environment variables override individual keys.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.CORSOrigins = getEnvList("CORS_ORIGINS", c.CORSOrigins)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.MongoURL = getEnv("MONGO_URL", c.MongoURL)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBMaxConns = int32(getEnvInt("DB_MAX_CONNS", int(c.DBMaxConns)))
	c.RedisEnabled = getEnvBool("REDIS_ENABLED", c.RedisEnabled)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.ReasoningBaseURL = getEnv("REASONING_BASE_URL", c.ReasoningBaseURL)
	c.ReasoningAPIKey = getEnv("REASONING_API_KEY", getEnv("EMERGENT_LLM_KEY", c.ReasoningAPIKey))
	c.ReasoningModel = getEnv("REASONING_MODEL", c.ReasoningModel)
	c.ReasoningTimeoutSeconds = getEnvInt("REASONING_TIMEOUT_SECONDS", c.ReasoningTimeoutSeconds)
	c.ReasoningRetry = getEnvBool("REASONING_RETRY", c.ReasoningRetry)
	c.DBChannelSize = getEnvInt("DB_CHANNEL_SIZE", c.DBChannelSize)
	c.StateChannelSize = getEnvInt("STATE_CHANNEL_SIZE", c.StateChannelSize)
	c.AlertChannelSize = getEnvInt("ALERT_CHANNEL_SIZE", c.AlertChannelSize)
	c.DBBatchSize = getEnvInt("DB_BATCH_SIZE", c.DBBatchSize)
	c.DBFlushIntervalMS = getEnvInt("DB_FLUSH_INTERVAL_MS", c.DBFlushIntervalMS)
	c.DBWriterWorkers = getEnvInt("DB_WRITER_WORKERS", c.DBWriterWorkers)
	c.StateWriterWorkers = getEnvInt("STATE_WRITER_WORKERS", c.StateWriterWorkers)
	c.AlertWorkers = getEnvInt("ALERT_WORKERS", c.AlertWorkers)
	c.AlertDedupTTLSeconds = getEnvInt("ALERT_DEDUP_TTL_SECONDS", c.AlertDedupTTLSeconds)
	c.AlertTransitionPolicy = getEnv("ALERT_TRANSITION_POLICY", c.AlertTransitionPolicy)
	c.AlertListDefaultLimit = getEnvInt("ALERT_LIST_DEFAULT_LIMIT", c.AlertListDefaultLimit)
	c.AlertListMaxLimit = getEnvInt("ALERT_LIST_MAX_LIMIT", c.AlertListMaxLimit)
	c.SeedOnStartup = getEnvBool("SEED_ON_STARTUP", c.SeedOnStartup)
	c.DroneDispatchDelayMS = getEnvInt("DRONE_DISPATCH_DELAY_MS", c.DroneDispatchDelayMS)
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "mongo", "timescale", "memory":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want mongo, timescale or memory)", c.StoreBackend)
	}
	switch c.AlertTransitionPolicy {
	case "permissive", "strict":
	default:
		return fmt.Errorf("unknown ALERT_TRANSITION_POLICY %q", c.AlertTransitionPolicy)
	}
	if c.ReasoningTimeoutSeconds <= 0 {
		return fmt.Errorf("REASONING_TIMEOUT_SECONDS must be positive")
	}
	if c.AlertListDefaultLimit <= 0 || c.AlertListMaxLimit < c.AlertListDefaultLimit {
		return fmt.Errorf("alert list limits invalid: default=%d max=%d", c.AlertListDefaultLimit, c.AlertListMaxLimit)
	}
	return nil
}

// TimescaleURL builds the pgx connection string.
func (c *Config) TimescaleURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?pool_max_conns=%d",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBMaxConns,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
