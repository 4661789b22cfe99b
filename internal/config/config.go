package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode             string        `mapstructure:"mode"`
	Port             int           `mapstructure:"port"`
	StaticPath       string        `mapstructure:"static_path"`
	ClientOrigin     string        `mapstructure:"client_origin"`
	Secret           string        `mapstructure:"secret"`
	ReadLimit        int64         `mapstructure:"read_limit"`
	PingPeriod       time.Duration `mapstructure:"ping_period"`
	PongWait         time.Duration `mapstructure:"pong_wait"`
	WriteWait        time.Duration `mapstructure:"write_wait"`
	SendBuffer       int           `mapstructure:"send_buffer"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	Backpressure     string        `mapstructure:"backpressure"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`

	JWT       JWT       `mapstructure:"jwt"`
	Database  Database  `mapstructure:"database"`
	Redis     Redis     `mapstructure:"redis"`
	RateLimit RateLimit `mapstructure:"ratelimit"`
	Limits    Limits    `mapstructure:"limits"`
	RTC       RTC       `mapstructure:"rtc"`
}

type JWT struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type Database struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type Redis struct {
	URL string `mapstructure:"url"`
}

type RateLimit struct {
	Events   int           `mapstructure:"events"`
	Interval time.Duration `mapstructure:"interval"`
}

type Limits struct {
	MessageContent int `mapstructure:"message_content"`
	TodoText       int `mapstructure:"todo_text"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type RTC struct {
	ICEServers []ICEServer `mapstructure:"ice_servers"`
}

func (c *Config) Debug() bool { return c.Mode == "debug" }

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default). A .env file,
// when present, is loaded into the environment first; HUDDLE_* variables
// override the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("HUDDLE")
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
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("db", cfg.Database.Driver).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 4000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("client_origin", "")
	v.SetDefault("secret", "")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "20s")
	v.SetDefault("pong_wait", "40s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("handshake_timeout", "10s")
	v.SetDefault("backpressure", "kick")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "huddle.db")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.url", "")

	v.SetDefault("ratelimit.events", 20)
	v.SetDefault("ratelimit.interval", "10s")

	v.SetDefault("limits.message_content", 1000)
	v.SetDefault("limits.todo_text", 255)

	v.SetDefault("rtc.ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
}

func (c *Config) validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Secret == "" {
		c.Secret = c.JWT.Secret
	}
	if c.PingPeriod <= 0 {
		errs = append(errs, errors.New("ping_period must be positive"))
	}
	if c.WriteWait <= 0 {
		errs = append(errs, errors.New("write_wait must be positive"))
	}
	if c.HandshakeTimeout <= 0 {
		errs = append(errs, errors.New("handshake_timeout must be positive"))
	}
	if c.PongWait <= c.PingPeriod {
		errs = append(errs, fmt.Errorf("pong_wait (%s) must exceed ping_period (%s)", c.PongWait, c.PingPeriod))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.RateLimit.Events < 0 {
		errs = append(errs, errors.New("ratelimit.events must not be negative"))
	}
	if c.RateLimit.Events > 0 && c.RateLimit.Interval <= 0 {
		errs = append(errs, errors.New("ratelimit.interval must be positive when ratelimit.events is set"))
	}
	return errors.Join(errs...)
}
