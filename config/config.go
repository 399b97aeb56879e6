package config

import (
	"os"
	"strconv"
)

type (
	Storage struct {
		Type           string
		LocalPath      string
		DataSourceName string
		S3Bucket       string
		RedisAddr      string
		RedisPassword  string
		RedisDB        int
		RedisKeyPrefix string
		PostgresDSN    string
	}

	Config struct {
		ListenAddr   string
		LogLevel     string
		JWTSecret    string
		PreviewScale float64
		Storage      Storage
	}
)

// Load reads configuration from the environment. Call godotenv.Load first if
// a .env file should be honoured.
func Load() *Config {
	return &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":3002"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		PreviewScale: getEnvAsFloat("PREVIEW_SCALE", 0.8),
		Storage: Storage{
			Type:           os.Getenv("STORAGE_TYPE"),
			LocalPath:      getEnv("LOCAL_STORAGE_PATH", "./data"),
			DataSourceName: getEnv("DATA_SOURCE_NAME", "certificates.db"),
			S3Bucket:       os.Getenv("S3_BUCKET_NAME"),
			RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:  os.Getenv("REDIS_PASSWORD"),
			RedisDB:        getEnvAsInt("REDIS_DB", 0),
			RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "certificate-designer:"),
			PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultVal
}
