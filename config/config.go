// Package config loads process-level settings from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"moderation-bot/model"
)

// Load reads configuration from .env, the process environment, and an
// optional config.yaml in the working directory. Environment variables win
// over the file.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg(".env file not found, relying on environment variables")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetDefault("database_path", "data/moderation.db")
	viper.SetDefault("log_level", "info")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}
	appID := viper.GetString("APP_ID")
	if appID == "" {
		return nil, fmt.Errorf("APP_ID environment variable not set")
	}

	return &model.Config{
		BotToken:     token,
		AppID:        appID,
		DatabasePath: viper.GetString("database_path"),
		LogLevel:     viper.GetString("log_level"),
	}, nil
}
