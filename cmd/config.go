package cmd

import (
	"github.com/spf13/viper"
)

// Config is the application configuration, read from appsettings.yaml.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Quotes   QuotesConfig   `mapstructure:"quotes"`
	Database DatabaseConfig `mapstructure:"database"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type QuotesConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	Token   string `mapstructure:"token"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LoadConfig reads appsettings.yaml from the given folder.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
