package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// 存储后端类型
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

// Config 应用配置
type Config struct {
	Env            string
	AppSecret      string
	DatabaseURL    string
	JWTExpiry      time.Duration
	Port           string
	SiteUrl        string
	CORSOrigins    []string
	StorageBackend string
	UploadDir      string
	GCSBucket      string
}

// ErrMissingSecret 未设置签名密钥，启动时视为致命配置错误
var ErrMissingSecret = errors.New("未设置 APP_SECRET 环境变量")

// Load 加载配置
func Load() (*Config, error) {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "1"))
	if expiryHours <= 0 {
		expiryHours = 1
	}

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "movieshelf")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	// 会话凭证依赖该密钥签名，缺失时拒绝启动
	appSecret := getEnv("APP_SECRET", os.Getenv("JWT_SECRET"))
	if appSecret == "" {
		return nil, ErrMissingSecret
	}

	port := getEnv("PORT", "5000")

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		AppSecret:      appSecret,
		DatabaseURL:    dbURL,
		JWTExpiry:      time.Duration(expiryHours) * time.Hour,
		Port:           port,
		SiteUrl:        getEnv("SITE_URL", "http://localhost:"+port),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StorageBackend: getEnv("STORAGE_BACKEND", StorageLocal),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		GCSBucket:      getEnv("GCS_BUCKET", ""),
	}

	if cfg.StorageBackend == StorageGCS && cfg.GCSBucket == "" {
		return nil, errors.New("STORAGE_BACKEND=gcs 时必须设置 GCS_BUCKET")
	}

	return cfg, nil
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
