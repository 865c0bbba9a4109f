package config

import (
	"os"
	"strconv"
	"time"
)

// DBConfig 数据库配置
type DBConfig struct {
	// Driver is "postgres" or "memory".
	Driver        string        `yaml:"driver"`
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	Name          string        `yaml:"name"`
	SSLMode       string        `yaml:"sslmode"`
	SlowThreshold time.Duration `yaml:"slow_threshold"`
}

// MQConfig 消息队列配置. An empty URL disables content fan-out.
type MQConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig Redis配置. An empty Addr selects the in-process fallbacks.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port          string `yaml:"port"`
	PublicBaseURL string `yaml:"public_base_url"`
	SecureCookies bool   `yaml:"secure_cookies"`
}

type StorageConfig struct {
	Root         string `yaml:"root"`
	Bucket       string `yaml:"bucket"`
	MaxBatch     int    `yaml:"max_batch"`
	MaxFileBytes int64  `yaml:"max_file_bytes"`
}

// AdminConfig seeds the single admin account on startup.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type SiteConfig struct {
	SplashMin          time.Duration `yaml:"splash_min"`
	TypewriterInterval time.Duration `yaml:"typewriter_interval"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	WhatsAppNumber     string        `yaml:"whatsapp_number"`
}

type OTelConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Driver = driver
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideJWTFromEnv 从环境变量覆盖JWT配置
func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
	if base := os.Getenv("PUBLIC_BASE_URL"); base != "" {
		cfg.PublicBaseURL = base
	}
}

func OverrideStorageFromEnv(cfg *StorageConfig) {
	if root := os.Getenv("STORAGE_ROOT"); root != "" {
		cfg.Root = root
	}
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		cfg.Bucket = bucket
	}
}

func OverrideAdminFromEnv(cfg *AdminConfig) {
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		cfg.Email = email
	}
	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		cfg.Password = password
	}
}
