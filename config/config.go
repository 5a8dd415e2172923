// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store driver'ları.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	NATS      NATSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string      // CORS; virgülle ayrılmış CORS_ALLOWED_ORIGINS
	AsyncTimeout   time.Duration // arka plan yan etki işlerinin süre sınırı
}

// DatabaseConfig, store ayarları.
// Driver "sqlite" ise Path, "mongo" ise MongoURI + MongoDatabase kullanılır.
type DatabaseConfig struct {
	Driver        string
	Path          string
	MongoURI      string
	MongoDatabase string
}

// JWTConfig, access token doğrulama ayarları.
type JWTConfig struct {
	Secret string // Token imzalama anahtarı, GİZLİ TUTULMALI
}

// NATSConfig, app event bus ayarları. URL boşsa in-process bus kullanılır.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// LogConfig, zerolog ayarları.
type LogConfig struct {
	Level  string
	Pretty bool
}

// RateLimitConfig, reaction endpoint'i için kullanıcı bazlı token bucket.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// CacheConfig, TTL cache süreleri.
type CacheConfig struct {
	CustomEmojiTTL time.Duration
	PermissionTTL  time.Duration
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler; yoksa sessizce devam eder.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	perSecond, err := strconv.ParseFloat(getEnv("REACTION_RATE_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REACTION_RATE_PER_SECOND: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("REACTION_RATE_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid REACTION_RATE_BURST: %w", err)
	}

	emojiTTL, err := time.ParseDuration(getEnv("CUSTOM_EMOJI_CACHE_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CUSTOM_EMOJI_CACHE_TTL: %w", err)
	}

	permTTL, err := time.ParseDuration(getEnv("PERMISSION_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PERMISSION_CACHE_TTL: %w", err)
	}

	asyncTimeout, err := time.ParseDuration(getEnv("ASYNC_TASK_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ASYNC_TASK_TIMEOUT: %w", err)
	}

	pretty, err := strconv.ParseBool(getEnv("LOG_PRETTY", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}

	driver := getEnv("DATABASE_DRIVER", DriverSQLite)
	if driver != DriverSQLite && driver != DriverMongo {
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q (expected %s or %s)", driver, DriverSQLite, DriverMongo)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
			AsyncTimeout:   asyncTimeout,
		},
		Database: DatabaseConfig{
			Driver:        driver,
			Path:          getEnv("DATABASE_PATH", "./data/tepki.db"),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("MONGO_DATABASE", "tepki"),
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "tepki.apps"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: pretty,
		},
		RateLimit: RateLimitConfig{
			PerSecond: perSecond,
			Burst:     burst,
		},
		Cache: CacheConfig{
			CustomEmojiTTL: emojiTTL,
			PermissionTTL:  permTTL,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// splitList, virgülle ayrılmış değeri boş öğeleri atlayarak böler.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
