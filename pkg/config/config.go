package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Solver   SolverConfig
	Form     FormConfig
	Sessions SessionConfig
	Submit   SubmitConfig
	Results  ResultsConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// SolverConfig points at the external optimization service.
type SolverConfig struct {
	URL string
}

// FormConfig seeds every new form session.
type FormConfig struct {
	DefaultFloors int
	DefaultDelta  float64
	DefaultLambda float64
}

// SessionConfig controls expiry of idle form sessions.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// SubmitConfig sizes the worker queue that carries solver calls.
type SubmitConfig struct {
	Workers    int
	BufferSize int
}

// ResultsConfig governs the archive of successful results used for exports.
type ResultsConfig struct {
	TTL time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Solver = SolverConfig{URL: strings.TrimSpace(v.GetString("SOLVER_URL"))}

	cfg.Form = FormConfig{
		DefaultFloors: v.GetInt("FORM_DEFAULT_FLOORS"),
		DefaultDelta:  v.GetFloat64("FORM_DEFAULT_DELTA"),
		DefaultLambda: v.GetFloat64("FORM_DEFAULT_LAMBDA"),
	}
	if cfg.Form.DefaultFloors < 0 {
		cfg.Form.DefaultFloors = 0
	}

	cfg.Sessions = SessionConfig{
		TTL:           parseDuration(v.GetString("SESSION_TTL"), 2*time.Hour),
		SweepInterval: parseDuration(v.GetString("SESSION_SWEEP_INTERVAL"), 10*time.Minute),
	}

	cfg.Submit = SubmitConfig{
		Workers:    v.GetInt("SUBMIT_WORKERS"),
		BufferSize: v.GetInt("SUBMIT_BUFFER"),
	}

	cfg.Results = ResultsConfig{
		TTL: parseDuration(v.GetString("RESULTS_TTL"), time.Hour),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("SOLVER_URL", "http://127.0.0.1:5000/solve")

	v.SetDefault("FORM_DEFAULT_FLOORS", 1)
	v.SetDefault("FORM_DEFAULT_DELTA", 20)
	v.SetDefault("FORM_DEFAULT_LAMBDA", 1.0)

	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "10m")

	v.SetDefault("SUBMIT_WORKERS", 4)
	v.SetDefault("SUBMIT_BUFFER", 32)

	v.SetDefault("RESULTS_TTL", "1h")

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
