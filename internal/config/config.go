package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Telegram TelegramConfig `yaml:"telegram"`
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds settings of the health-check HTTP server.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// StorageConfig selects the durable store implementation.
type StorageConfig struct {
	// Driver is "postgres" or "memory". "memory" loses data on restart and
	// is meant for local runs.
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

// CacheConfig holds conversation-state cache settings.
type CacheConfig struct {
	Driver string `yaml:"driver" env:"CACHE_DRIVER" env-default:"memory"`
	// StateTTL is how long an unfinished flow is kept.
	StateTTL time.Duration `yaml:"state_ttl" env:"CACHE_STATE_TTL" env-default:"10m"`
	// ExpiredGrace keeps a lapsed state around a little longer so the user
	// can be told the flow expired instead of silently starting over.
	ExpiredGrace  time.Duration `yaml:"expired_grace"  env:"CACHE_EXPIRED_GRACE"  env-default:"1h"`
	MaxEntries    int           `yaml:"max_entries"    env:"CACHE_MAX_ENTRIES"    env-default:"100000"`
	RedisAddr     string        `yaml:"redis_addr"     env:"CACHE_REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"CACHE_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db"       env:"CACHE_REDIS_DB"       env-default:"0"`
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	Token       string        `yaml:"token"        env:"TELEGRAM_TOKEN"`
	BaseURL     string        `yaml:"base_url"     env:"TELEGRAM_BASE_URL"     env-default:"https://api.telegram.org"`
	PollTimeout time.Duration `yaml:"poll_timeout" env:"TELEGRAM_POLL_TIMEOUT" env-default:"30s"`
	SendTimeout time.Duration `yaml:"send_timeout" env:"TELEGRAM_SEND_TIMEOUT" env-default:"10s"`
	Workers     int           `yaml:"workers"      env:"TELEGRAM_WORKERS"      env-default:"16"`
}

// BotConfig holds conversation limits.
type BotConfig struct {
	MaxNameLen        int `yaml:"max_name_len"        env:"BOT_MAX_NAME_LEN"        env-default:"100"`
	MaxDescriptionLen int `yaml:"max_description_len" env:"BOT_MAX_DESCRIPTION_LEN" env-default:"255"`
	MaxTags           int `yaml:"max_tags"            env:"BOT_MAX_TAGS"            env-default:"10"`
	MaxTagLen         int `yaml:"max_tag_len"         env:"BOT_MAX_TAG_LEN"         env-default:"50"`
	// ListLimit caps how many tasks a single list or search reply shows.
	ListLimit int `yaml:"list_limit" env:"BOT_LIST_LIMIT" env-default:"50"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)
