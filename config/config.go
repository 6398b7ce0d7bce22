package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Rotation RotationConfig `mapstructure:"rotation"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Security SecurityConfig `mapstructure:"security"`
	Data     DataConfig     `mapstructure:"data"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

// EngineConfig tunes the line-ingest side of the quest engine.
// Cooldowns maps canonical event keys to override durations; anything not
// listed falls back to the built-in table.
type EngineConfig struct {
	DuplicateWindow time.Duration            `mapstructure:"duplicate_window"`
	DefaultCooldown time.Duration            `mapstructure:"default_cooldown"`
	Cooldowns       map[string]time.Duration `mapstructure:"cooldowns"`
	FeedSize        int                      `mapstructure:"feed_size"`
}

type RotationConfig struct {
	Preset string `mapstructure:"preset"` // Solo | Party | RP
	// RolloverHour is the local hour at which the daily rotation task fires.
	RolloverHour int `mapstructure:"rollover_hour"`
}

type SyncConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Endpoint     string        `mapstructure:"endpoint"`
	Token        string        `mapstructure:"token"`
	PlayerName   string        `mapstructure:"player_name"`
	Interval     time.Duration `mapstructure:"interval"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type SecurityConfig struct {
	// PairKeyHash is the bcrypt hash of the pairing key the client plugin
	// presents to obtain a session token. Empty disables the API.
	PairKeyHash    string        `mapstructure:"pair_key_hash"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// DataConfig points at optional data files overriding the built-in
// daily-template pool and secret title tiers.
type DataConfig struct {
	TemplatesPath string `mapstructure:"templates_path"`
	TiersPath     string `mapstructure:"tiers_path"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8210)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/socialmorpho.db")
	v.SetDefault("database.mysql_max_open", 10)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("engine.duplicate_window", "2s")
	v.SetDefault("engine.default_cooldown", "2s")
	v.SetDefault("engine.feed_size", 100)
	v.SetDefault("rotation.preset", "Solo")
	v.SetDefault("rotation.rollover_hour", 0)
	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.interval", "5m")
	v.SetDefault("sync.retry_backoff", "2m")
	v.SetDefault("sync.timeout", "10s")
	v.SetDefault("security.jwt_ttl_h", "168h")
	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
