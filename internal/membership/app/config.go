package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is read from the environment and an optional .env file. Environment
// variables win over the file.
type Config struct {
	ServiceName         string        `mapstructure:"SERVICE_NAME"`
	Env                 string        `mapstructure:"ENV"` // dev, staging, prod
	HTTPAddr            string        `mapstructure:"HTTP_ADDR"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`  // debug, info, warn, error
	LogFormat           string        `mapstructure:"LOG_FORMAT"` // json, text
	ShutdownGracePeriod time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"`

	DatabaseFile string `mapstructure:"DB_FILE"`
	PepperPath   string `mapstructure:"PEPPER_PATH"`

	Issuer         string        `mapstructure:"ISSUER"`
	Audience       []string      `mapstructure:"AUDIENCE"` // comma separated
	AccessTokenTTL time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	SigningKeyPath string        `mapstructure:"SIGNING_KEY_PATH"`
	BootstrapToken string        `mapstructure:"BOOTSTRAP_TOKEN"` // Optional: bootstrap disabled when empty

	PublicBaseURL    string        `mapstructure:"PUBLIC_BASE_URL"` // base of invite join links
	InviteDefaultTTL time.Duration `mapstructure:"INVITE_DEFAULT_TTL"`

	HousekeepingInterval time.Duration `mapstructure:"HOUSEKEEPING_INTERVAL"`
	InviteRetention      time.Duration `mapstructure:"INVITE_RETENTION"` // unused expired invites are kept this long

	// Media uploads are disabled when MediaBucket is empty.
	MediaBucket        string `mapstructure:"MEDIA_BUCKET"`
	MediaRegion        string `mapstructure:"MEDIA_REGION"`
	MediaEndpoint      string `mapstructure:"MEDIA_ENDPOINT"` // S3 compatible endpoint, e.g. MinIO
	MediaPublicBaseURL string `mapstructure:"MEDIA_PUBLIC_BASE_URL"`
	MediaMaxBytes      int64  `mapstructure:"MEDIA_MAX_BYTES"`
}

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.Audience = splitList(cfg.Audience)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "membership-service")
	v.SetDefault("ENV", "dev")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", "10s")

	v.SetDefault("DB_FILE", "membership.db")
	v.SetDefault("PEPPER_PATH", "pepper")

	v.SetDefault("ISSUER", "colive-membership")
	v.SetDefault("AUDIENCE", "colive")
	v.SetDefault("ACCESS_TOKEN_TTL", "1h")
	v.SetDefault("SIGNING_KEY_PATH", "signing.pem")
	v.SetDefault("BOOTSTRAP_TOKEN", "")

	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("INVITE_DEFAULT_TTL", "720h") // 30 days
	v.SetDefault("HOUSEKEEPING_INTERVAL", "1h")
	v.SetDefault("INVITE_RETENTION", "720h")

	v.SetDefault("MEDIA_BUCKET", "")
	v.SetDefault("MEDIA_REGION", "us-east-1")
	v.SetDefault("MEDIA_ENDPOINT", "")
	v.SetDefault("MEDIA_PUBLIC_BASE_URL", "")
	v.SetDefault("MEDIA_MAX_BYTES", 10<<20)
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must be set"))
	}
	if c.DatabaseFile == "" {
		errs = append(errs, errors.New("DB_FILE must be set"))
	}
	if c.Issuer == "" {
		errs = append(errs, errors.New("ISSUER must be set"))
	}
	if len(c.Audience) == 0 {
		errs = append(errs, errors.New("AUDIENCE must name at least one audience"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.InviteDefaultTTL < 0 {
		errs = append(errs, errors.New("INVITE_DEFAULT_TTL must not be negative"))
	}
	if !strings.HasPrefix(c.PublicBaseURL, "http://") && !strings.HasPrefix(c.PublicBaseURL, "https://") {
		errs = append(errs, errors.New("PUBLIC_BASE_URL must be an http(s) URL"))
	}
	if c.MediaBucket != "" && c.MediaRegion == "" {
		errs = append(errs, errors.New("MEDIA_REGION must be set when MEDIA_BUCKET is"))
	}
	if c.MediaMaxBytes < 0 {
		errs = append(errs, errors.New("MEDIA_MAX_BYTES must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// splitList flattens comma separated entries and drops blanks.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for part := range strings.SplitSeq(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
