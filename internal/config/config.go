package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	LogLevel      string        `mapstructure:"log_level"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
	SessionSecret string        `mapstructure:"session_secret"`
	JWTSecret     string        `mapstructure:"jwt_secret"`

	Store  StoreConfig  `mapstructure:"store"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Hub    HubConfig    `mapstructure:"hub"`
	WebRTC WebRTCConfig `mapstructure:"webrtc"`
}

type StoreConfig struct {
	// Driver is "mongo" or "memory".
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// RedisConfig enables the room cache when Addr is set.
type RedisConfig struct {
	Addr    string        `mapstructure:"addr"`
	RoomTTL time.Duration `mapstructure:"room_ttl"`
}

type HubConfig struct {
	GatewayTimeout     time.Duration `mapstructure:"gateway_timeout"`
	WriteWait          time.Duration `mapstructure:"write_wait"`
	CleanupOnClose     bool          `mapstructure:"cleanup_on_close"`
	EvictOnSendFailure bool          `mapstructure:"evict_on_send_failure"`
	JoinNack           bool          `mapstructure:"join_nack"`
	JoinRateLimit      int           `mapstructure:"join_rate_limit"`
	JoinRateInterval   time.Duration `mapstructure:"join_rate_interval"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type WebRTCConfig struct {
	ICEServers []ICEServer `mapstructure:"ice_servers"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Str("module", "config").Msg("loaded .env")
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return load(fmt.Sprintf("config/config.%s.yaml", env))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("session_secret", "")
	v.SetDefault("jwt_secret", "")

	v.SetDefault("store.driver", "mongo")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "telesync")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.room_ttl", "30s")

	v.SetDefault("hub.gateway_timeout", "5s")
	v.SetDefault("hub.write_wait", "5s")
	v.SetDefault("hub.cleanup_on_close", true)
	v.SetDefault("hub.evict_on_send_failure", false)
	v.SetDefault("hub.join_nack", false)
	v.SetDefault("hub.join_rate_limit", 20)
	v.SetDefault("hub.join_rate_interval", "10s")

	v.SetDefault("webrtc.ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
}

func load(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory":
	case "mongo":
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri is required for store.driver=mongo")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	return nil
}
