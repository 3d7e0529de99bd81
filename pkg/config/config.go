package config

import (
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`
	// TrustProxy takes client IPs from forwarding headers. Only set behind a proxy.
	TrustProxy bool `mapstructure:"TRUST_PROXY"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required,url|uri"`

	// JWTSecret signs session tokens.
	JWTSecret string `mapstructure:"JWT_SECRET" validate:"required,min=32"`
	// SiteURL is the public origin used to build links sent to users.
	SiteURL string `mapstructure:"SITE_URL" validate:"required,url"`

	AIAPIKey  string        `mapstructure:"AI_API_KEY" validate:"required"`
	AIBaseURL string        `mapstructure:"AI_BASE_URL" validate:"required,url"`
	AIModel   string        `mapstructure:"AI_MODEL" validate:"required"`
	AITimeout time.Duration `mapstructure:"AI_TIMEOUT" validate:"required"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required,hostname_port"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	AsynqConcurrency int `mapstructure:"ASYNQ_CONCURRENCY" validate:"gte=1,lte=1000"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`
}

var (
	cfg          *Config
	validate     = validator.New(validator.WithRequiredStructEnabled())
	typeOfConfig = reflect.TypeOf(Config{})
)

var keys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"SHUTDOWN_TIMEOUT",
	"TRUST_PROXY",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"DATABASE_URL",
	"JWT_SECRET",
	"SITE_URL",
	"AI_API_KEY",
	"AI_BASE_URL",
	"AI_MODEL",
	"AI_TIMEOUT",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"ASYNQ_CONCURRENCY",
	"GOMAXPROCS",
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	// Load .env if present (non-fatal)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("AI_MODEL", "gemini-2.0-flash")
	v.SetDefault("AI_TIMEOUT", "120s")
	v.SetDefault("ASYNQ_CONCURRENCY", 5)
	v.SetDefault("GOMAXPROCS", 0)

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Durations may arrive as plain strings from the environment
	for key, dst := range map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
		"AI_TIMEOUT":       &c.AITimeout,
	} {
		s := v.GetString(key)
		if s == "" {
			continue
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}

	c.SiteURL = strings.TrimRight(c.SiteURL, "/")

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", describe(err))
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// describe turns validator output into a message naming each offending variable.
func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("%s is required", envName(fe.StructField())))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %q validation", envName(fe.StructField()), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func envName(field string) string {
	t, ok := typeOfConfig.FieldByName(field)
	if !ok {
		return field
	}
	return t.Tag.Get("mapstructure")
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}
