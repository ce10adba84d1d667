package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort        int           `mapstructure:"APP_PORT"`
	DatabasePath   string        `mapstructure:"DATABASE_PATH"`
	StorageBackend string        `mapstructure:"STORAGE_BACKEND"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	OllamaURL      string        `mapstructure:"OLLAMA_URL"`
	DefaultModel   string        `mapstructure:"DEFAULT_MODEL"`
	ModelCacheTTL  time.Duration `mapstructure:"MODEL_CACHE_TTL"`
	LocalIP        string        `mapstructure:"LOCAL_IP"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "data/chat_history.db")
	viper.SetDefault("STORAGE_BACKEND", "sqlite")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("OLLAMA_URL", "http://localhost:11434")
	viper.SetDefault("DEFAULT_MODEL", "llama3")
	viper.SetDefault("MODEL_CACHE_TTL", 300*time.Second)
	viper.SetDefault("LOCAL_IP", "127.0.0.1")
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
