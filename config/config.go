package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey           string `mapstructure:"secret_key"`
		AccessTokenTTLDays  int    `mapstructure:"access_ttl_days"`
		RefreshTokenTTLDays int    `mapstructure:"refresh_ttl_days"`
		ResetTokenTTLHours  int    `mapstructure:"reset_ttl_hours"`
		Issuer              string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	Mail struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
		AppURL   string `mapstructure:"app_url"`
	} `mapstructure:"mail"`
	Store struct {
		TimeoutSeconds int `mapstructure:"timeout_seconds"`
		MaxRetries     int `mapstructure:"max_retries"`
	} `mapstructure:"store"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
