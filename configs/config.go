package configs

import (
	"errors"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/otarbekov/tradequest/internal/logger"
)

type Config struct {
	Env    string `mapstructure:"env"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	JWT struct {
		SECRET   string `mapstructure:"secret"`
		TTLHours int    `mapstructure:"ttl-hours"`
	} `mapstructure:"jwt"`
	Telegram struct {
		BotToken string `mapstructure:"bot-token"`
	} `mapstructure:"telegram"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
}

var AppConfig Config

func LoadConfig() {
	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("env", "dev")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("jwt.ttl-hours", 168)

	viper.AutomaticEnv()

	var fileLookupError viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil {
		if errors.As(err, &fileLookupError) {
			logger.Log.Fatal("config file not found", zap.Error(err))
		}
		logger.Log.Fatal("failed to read config", zap.Error(err))
	}

	viper.Unmarshal(&AppConfig)
}
