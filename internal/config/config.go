package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	Region         string
	MaxUploadBytes int64
}

type SecurityConfig struct {
	SessionTTL       time.Duration
	CSRFTokenTTL     time.Duration
	MaxLoginAttempts int
	AttemptWindow    time.Duration
	LockoutDuration  time.Duration
	FailedLoginDelay time.Duration
}

type CalendarConfig struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	Timezone  string
	CacheTTL  time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Calendar         CalendarConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SHULSITE")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects combinations that would silently weaken security.
// Running without a database is tolerated only in development, where the
// auth gate degrades to allow-through.
func (c *AppConfig) Validate() error {
	if c.IsProduction() && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required in production")
	}
	if c.Security.MaxLoginAttempts < 1 {
		return fmt.Errorf("security.maxloginattempts must be at least 1")
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.sessionttl must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 4)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.bucket", "shulsite-images")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.maxuploadbytes", 10*1024*1024)

	v.SetDefault("security.sessionttl", "168h") // 7 days
	v.SetDefault("security.csrftokenttl", "24h")
	v.SetDefault("security.maxloginattempts", 5)
	v.SetDefault("security.attemptwindow", "1h")
	v.SetDefault("security.lockoutduration", "15m")
	v.SetDefault("security.failedlogindelay", "500ms")

	v.SetDefault("calendar.baseurl", "https://www.hebcal.com")
	v.SetDefault("calendar.latitude", 33.7175)
	v.SetDefault("calendar.longitude", -117.8311)
	v.SetDefault("calendar.timezone", "America/Los_Angeles")
	v.SetDefault("calendar.cachettl", "1h")
}
