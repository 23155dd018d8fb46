package initializers

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the runtime configuration, read from the environment and an
// optional .env file.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	// DBDriver is one of sqlite, mysql or postgres.
	DBDriver string `mapstructure:"DB_DRIVER"`
	DSN      string `mapstructure:"DSN"`

	SecretKey   string `mapstructure:"SECRET_KEY"`
	TokenExpiry int    `mapstructure:"TOKEN_EXPIRY_MINUTES"`

	// RedisHost left empty disables the principal cache.
	RedisHost string `mapstructure:"REDIS_HOST"`
	RedisPort string `mapstructure:"REDIS_PORT"`
	RedisPass string `mapstructure:"REDIS_PASS"`

	UploadsDir    string `mapstructure:"UPLOADS_DIR"`
	MediaURL      string `mapstructure:"MEDIA_URL"`
	MaxImageBytes int64  `mapstructure:"MAX_IMAGE_BYTES"`
	MaxFileBytes  int64  `mapstructure:"MAX_FILE_BYTES"`

	// LogFileDir left empty logs to stdout.
	LogFileDir     string `mapstructure:"LOG_FILE_DIR"`
	LogFileDefault string `mapstructure:"LOG_FILE_DEFAULT"`

	// Comma separated lists.
	Admins      string `mapstructure:"ADMINS"`
	Categories  string `mapstructure:"CATEGORIES"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
}

var Cfg Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DSN", "blog.db")
	// Keys unknown to viper are skipped by Unmarshal, even when set in the
	// environment.
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("TOKEN_EXPIRY_MINUTES", 60*24*30)
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASS", "")
	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("MEDIA_URL", "/media")
	v.SetDefault("MAX_IMAGE_BYTES", 5<<20)
	v.SetDefault("MAX_FILE_BYTES", 20<<20)
	v.SetDefault("LOG_FILE_DIR", "")
	v.SetDefault("LOG_FILE_DEFAULT", "blog.log")
	v.SetDefault("ADMINS", "")
	v.SetDefault("CATEGORIES", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
}

// LoadEnvVar fills Cfg. Values of the .env file never override variables
// already set in the environment.
func LoadEnvVar() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("Error loading .env file: " + err.Error())
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg, err := readConfig(v)
	if err != nil {
		panic(err.Error())
	}
	Cfg = cfg
}

func readConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.New("Failed to parse configuration: " + err.Error())
	}
	if cfg.SecretKey == "" {
		return cfg, errors.New("SECRET_KEY must be set")
	}
	if cfg.TokenExpiry <= 0 {
		slog.Warn("Invalid TOKEN_EXPIRY_MINUTES, using one day", "value", cfg.TokenExpiry)
		cfg.TokenExpiry = 60 * 24
	}
	return cfg, nil
}

// SplitList splits a comma separated configuration value.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
