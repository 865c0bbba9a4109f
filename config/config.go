package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgconfig "photostudio/pkg/config"
)

type Config struct {
	Server  pkgconfig.ServerConfig  `yaml:"server"`
	DB      pkgconfig.DBConfig      `yaml:"db"`
	Redis   pkgconfig.RedisConfig   `yaml:"redis"`
	JWT     pkgconfig.JWTConfig     `yaml:"jwt"`
	MQ      pkgconfig.MQConfig      `yaml:"mq"`
	Storage pkgconfig.StorageConfig `yaml:"storage"`
	Admin   pkgconfig.AdminConfig   `yaml:"admin"`
	Site    pkgconfig.SiteConfig    `yaml:"site"`
	OTel    pkgconfig.OTelConfig    `yaml:"otel"`
	Log     pkgconfig.LogConfig     `yaml:"log"`
}

// Load reads <dir>/base.yaml merged with <dir>/<env>.yaml, applies environment overrides,
// fills defaults and validates. A returned error is fatal: the process must not serve.
func Load(env, dir string) (*Config, error) {
	merged, err := pkgconfig.LoadConfig(env, dir)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := pkgconfig.Decode(merged, &cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideJWTFromEnv(&cfg.JWT)
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideStorageFromEnv(&cfg.Storage)
	pkgconfig.OverrideAdminFromEnv(&cfg.Admin)

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	c.Server.PublicBaseURL = strings.TrimRight(c.Server.PublicBaseURL, "/")
	if c.DB.Driver == "" {
		c.DB.Driver = "postgres"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}
	if c.DB.SlowThreshold == 0 {
		c.DB.SlowThreshold = 100 * time.Millisecond
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 24 * time.Hour
	}
	if c.Storage.Root == "" {
		c.Storage.Root = "data/storage"
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "portfolio"
	}
	if c.Storage.MaxBatch == 0 {
		c.Storage.MaxBatch = 20
	}
	if c.Storage.MaxFileBytes == 0 {
		c.Storage.MaxFileBytes = 15 << 20
	}
	if c.Site.SplashMin == 0 {
		c.Site.SplashMin = 2 * time.Second
	}
	if c.Site.TypewriterInterval == 0 {
		c.Site.TypewriterInterval = 30 * time.Millisecond
	}
	if c.Site.CacheTTL == 0 {
		c.Site.CacheTTL = 5 * time.Minute
	}
	if c.OTel.ServiceName == "" {
		c.OTel.ServiceName = "photostudio"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

var ErrMissingConfig = errors.New("missing required configuration")

func (c *Config) Validate() error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "jwt.secret (JWT_SECRET)")
	}
	switch c.DB.Driver {
	case "postgres":
		if c.DB.Host == "" {
			missing = append(missing, "db.host (DB_HOST)")
		}
		if c.DB.Name == "" {
			missing = append(missing, "db.name (DB_NAME)")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown db.driver %q", c.DB.Driver)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}
