package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Plugin     string `mapstructure:"plugin"`
	PeerID     string `mapstructure:"peer_id"`
	GatewayURL string `mapstructure:"gateway_url"`
	StatusPort int    `mapstructure:"status_port"`
	LogLevel   string `mapstructure:"log_level"`
	ReadLimit  int64  `mapstructure:"read_limit"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("plugin", "gateway")
	v.SetDefault("peer_id", "peerbridge")
	v.SetDefault("gateway_url", "ws://localhost:8000/events")
	v.SetDefault("status_port", 8081)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
