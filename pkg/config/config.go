package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string
	StorageBucket   string

	ServiceAccountJSON string
	ServiceAccountPath string

	RedisAddr       string
	RedisPassword   string
	ProfileCacheTTL int64 // seconds

	Map MapConfig
}

// MapConfig is handed to every map surface in the session handshake.
type MapConfig struct {
	APIKey          string
	DefaultLat      float64
	DefaultLon      float64
	DefaultZoom     float64
	FocusZoom       float64
	ReadyTimeoutSec int64
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),

		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "./civicalert-firebase-adminsdk.json"),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		ProfileCacheTTL: getEnvAsInt64("PROFILE_CACHE_TTL_SECONDS", 300),

		Map: MapConfig{
			APIKey:          getEnv("MAP_API_KEY", ""),
			DefaultLat:      getEnvAsFloat("MAP_DEFAULT_LAT", 34.0781),
			DefaultLon:      getEnvAsFloat("MAP_DEFAULT_LON", -118.7368),
			DefaultZoom:     getEnvAsFloat("MAP_DEFAULT_ZOOM", 10),
			FocusZoom:       getEnvAsFloat("MAP_FOCUS_ZOOM", 13),
			ReadyTimeoutSec: getEnvAsInt64("MAP_READY_TIMEOUT_SECONDS", 30),
		},
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
	}
	return defaultValue
}
