package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/mailer"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/objstore"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/redis"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/workerpool"
)

type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Database database.Config   `mapstructure:"database"`
	Redis    redis.Config      `mapstructure:"redis"`
	MinIO    objstore.Config   `mapstructure:"minio"`
	SMTP     mailer.Config     `mapstructure:"smtp"`
	Log      logger.Config     `mapstructure:"log"`
	Auth     AuthConfig        `mapstructure:"auth"`
	Search   SearchConfig      `mapstructure:"search"`
	Export   workerpool.Config `mapstructure:"export"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type SearchConfig struct {
	// StrategyTimeout bounds a single strategy attempt, not the whole
	// request. Zero keeps the engine default.
	StrategyTimeout time.Duration `mapstructure:"strategy_timeout"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}

	return &config, nil
}
