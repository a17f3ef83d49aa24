package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string

	// MySQLEnabled selects the relational backend. When false the server
	// runs against the flat JSON-file store instead (demo deployment).
	MySQLEnabled bool

	// DataFile is the JSON-file store path used when MySQLEnabled is false.
	DataFile string
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "3001")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_USER", "root")
	viper.SetDefault("DB_DATABASE", "stockroom")
	viper.SetDefault("MYSQL_ENABLED", true)
	viper.SetDefault("DATA_FILE", "data/stockroom.json")
	viper.SetDefault("UPLOAD_DIR", "public/uploads")
	viper.SetDefault("MAX_UPLOAD_SIZE", 5_000_000)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Database:     viper.GetString("DB_DATABASE"),
			MySQLEnabled: viper.GetBool("MYSQL_ENABLED"),
			DataFile:     viper.GetString("DATA_FILE"),
		},
		Upload: UploadConfig{
			Dir:      viper.GetString("UPLOAD_DIR"),
			MaxBytes: viper.GetInt64("MAX_UPLOAD_SIZE"),
		},
	}
}
