package config

import (
	"time"

	"github.com/dmitrymomot/mailsig/pkg/logger"
	"github.com/dmitrymomot/mailsig/pkg/signature"
	"github.com/dmitrymomot/mailsig/pkg/storage"
)

// App is the runtime configuration shared by every mailsig command.
type App struct {
	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	CookieSecret string `env:"COOKIE_SECRET"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// RedisURL switches the relay cache from memory to Redis.
	RedisURL      string        `env:"REDIS_URL"`
	ImageCacheTTL time.Duration `env:"IMAGE_CACHE_TTL" envDefault:"24h"`
	RelayTimeout  time.Duration `env:"RELAY_TIMEOUT" envDefault:"15s"`
	RelayMaxBytes int64         `env:"RELAY_MAX_BYTES" envDefault:"10485760"`
	// RelayURL points one-shot commands at a running server's image relay.
	RelayURL string `env:"RELAY_URL"`

	// BackgroundAssetPath wins over BackgroundAssetURL when both are set.
	BackgroundAssetURL  string `env:"BACKGROUND_ASSET_URL"`
	BackgroundAssetPath string `env:"BACKGROUND_ASSET_PATH"`

	ChromePath      string        `env:"CHROME_PATH"`
	ChromeNoSandbox bool          `env:"CHROME_NO_SANDBOX"`
	ExportTimeout   time.Duration `env:"EXPORT_TIMEOUT" envDefault:"45s"`

	S3     S3
	Sentry logger.SentryConfig
}

// S3 configures photo uploads. Uploads stay disabled until the bucket and
// credentials are set.
type S3 struct {
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	PublicURL string `env:"S3_PUBLIC_URL"`
	PathStyle bool   `env:"S3_PATH_STYLE"`
}

// Storage converts the S3 settings for storage.New.
func (s S3) Storage() storage.Config {
	return storage.Config{
		Bucket:     s.Bucket,
		AccessKey:  s.AccessKey,
		SecretKey:  s.SecretKey,
		Endpoint:   s.Endpoint,
		Region:     s.Region,
		PublicURL:  s.PublicURL,
		DefaultACL: storage.ACLPublicRead,
		PathStyle:  s.PathStyle,
	}
}

// BackgroundURL is the composite background location, defaulting to the
// hosted accent asset.
func (a App) BackgroundURL() string {
	if a.BackgroundAssetURL != "" {
		return a.BackgroundAssetURL
	}
	return signature.AccentURL
}
