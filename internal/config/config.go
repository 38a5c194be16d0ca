// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is layered in order: built-in defaults, the optional YAML file,
// then environment variables.
type Config struct {
	App        AppConfig        `koanf:"app"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	JWT        JWTConfig        `koanf:"jwt"`
	OAuth      OAuthConfig      `koanf:"oauth"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	CORS       CORSConfig       `koanf:"cors"`
	Log        LogConfig        `koanf:"log"`
	Otel       OtelConfig       `koanf:"otel"`
	Storage    StorageConfig    `koanf:"storage"`
	Wallet     WalletConfig     `koanf:"wallet"`
	Realtime   RealtimeConfig   `koanf:"realtime"`
	Screenshot ScreenshotConfig `koanf:"screenshot"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath     string        `koanf:"private_key_path"`
	PublicKeyPath      string        `koanf:"public_key_path"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
}

// OAuthConfig controls Google ID-token sign-in. Empty ClientID disables it.
type OAuthConfig struct {
	GoogleClientID string `koanf:"google_client_id"`
	GoogleJWKSURL  string `koanf:"google_jwks_url"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// StorageConfig picks the object store for listing photos, KYC documents
// and screenshots.
type StorageConfig struct {
	Driver         string `koanf:"driver"`
	Bucket         string `koanf:"bucket"`
	Region         string `koanf:"region"`
	Endpoint       string `koanf:"endpoint"`
	PublicBaseURL  string `koanf:"public_base_url"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
}

type WalletConfig struct {
	SubscriptionPeriod time.Duration `koanf:"subscription_period"`
}

type RealtimeConfig struct {
	Driver       string        `koanf:"driver"`
	BufferSize   int           `koanf:"buffer_size"`
	PingInterval time.Duration `koanf:"ping_interval"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type ScreenshotConfig struct {
	Enabled        bool          `koanf:"enabled"`
	BrowserBin     string        `koanf:"browser_bin"`
	ControlURL     string        `koanf:"control_url"`
	Timeout        time.Duration `koanf:"timeout"`
	ViewportWidth  int           `koanf:"viewport_width"`
	ViewportHeight int           `koanf:"viewport_height"`
}

// Load reads configuration. An empty path skips the YAML layer.
func Load(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
