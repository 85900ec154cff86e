package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port                string `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	Development         bool   `mapstructure:"development"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTCfg struct {
	Secret            string `mapstructure:"secret"`
	AccessTTLMinutes  int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLDays    int    `mapstructure:"refresh_ttl_days"`
}

type S3Cfg struct {
	Region            string `mapstructure:"region"`
	Bucket            string `mapstructure:"bucket"`
	Endpoint          string `mapstructure:"endpoint"`
	PublicRead        bool   `mapstructure:"public_read"`
	PresignTTLSeconds int    `mapstructure:"presign_ttl_seconds"`
}

type Config struct {
	Server ServerCfg `mapstructure:"server"`
	Mongo  MongoCfg  `mapstructure:"mongo"`
	Redis  RedisCfg  `mapstructure:"redis"`
	JWT    JWTCfg    `mapstructure:"jwt"`
	S3     S3Cfg     `mapstructure:"s3"`
	// Derived
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	PresignTTL   time.Duration
}

// Load reads the yaml config at path and applies APP_-prefixed environment
// overrides (APP_SERVER_PORT, APP_JWT_SECRET, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	cfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.AccessTTL = time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
	cfg.RefreshTTL = time.Duration(cfg.JWT.RefreshTTLDays) * 24 * time.Hour
	cfg.PresignTTL = time.Duration(cfg.S3.PresignTTLSeconds) * time.Second
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 15
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "chatapp"
	}
	if cfg.JWT.AccessTTLMinutes == 0 {
		cfg.JWT.AccessTTLMinutes = 15
	}
	if cfg.JWT.RefreshTTLDays == 0 {
		cfg.JWT.RefreshTTLDays = 10
	}
	if cfg.S3.PresignTTLSeconds == 0 {
		cfg.S3.PresignTTLSeconds = 600
	}
}
