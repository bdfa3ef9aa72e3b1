package config

import (
	"os"
	"testing"
	"time"
)

var allEnvVars = []string{
	"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT", "ENVIRONMENT",
	"STORE_DRIVER", "STORE_TIMEOUT",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "SQLITE_PATH",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
	"MONGO_URI", "MONGO_DATABASE",
	"REDIS_ENABLED", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"REDIS_MIN_IDLE_CONNS", "REDIS_MAX_RETRIES", "REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
	"CACHE_ENABLED", "CACHE_TTL", "CACHE_L1_TTL",
	"JWT_SECRET", "JWT_ISSUER", "ACCESS_TOKEN_TTL", "BCRYPT_COST",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP",
	"CORS_ALLOWED_ORIGINS", "TRUSTED_PROXIES",
}

// clearEnv blanks every variable LoadConfig reads; getEnv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allEnvVars {
		t.Setenv(k, "")
	}
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with default config, got: %v", err)
	}

	if config.Server.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %s", config.Server.Host)
	}

	if config.Server.Port != "5000" {
		t.Errorf("Expected default port '5000', got %s", config.Server.Port)
	}

	if config.Server.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", config.Server.Environment)
	}

	if config.Store.Driver != DriverPostgres {
		t.Errorf("Expected default store driver 'postgres', got %s", config.Store.Driver)
	}

	if config.Store.Timeout != 5*time.Second {
		t.Errorf("Expected default store timeout 5s, got %v", config.Store.Timeout)
	}

	if config.Database.Name != "task_manager" {
		t.Errorf("Expected default DB name 'task_manager', got %s", config.Database.Name)
	}

	if config.Database.MaxOpenConns != 25 {
		t.Errorf("Expected default max open conns 25, got %d", config.Database.MaxOpenConns)
	}

	if config.Mongo.Database != "task_manager" {
		t.Errorf("Expected default mongo database 'task_manager', got %s", config.Mongo.Database)
	}

	if config.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}

	if config.Redis.PoolSize != 10 {
		t.Errorf("Expected default Redis pool size 10, got %d", config.Redis.PoolSize)
	}

	if !config.Cache.Enabled {
		t.Error("Expected caching to be enabled by default")
	}

	if config.Auth.AccessTokenTTL != 24*time.Hour {
		t.Errorf("Expected default token TTL 24h, got %v", config.Auth.AccessTokenTTL)
	}

	if config.Auth.BCryptCost != 10 {
		t.Errorf("Expected default bcrypt cost 10, got %d", config.Auth.BCryptCost)
	}

	if !config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be enabled by default")
	}

	if len(config.CORS.AllowedOrigins) != 1 || config.CORS.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("Unexpected default CORS origins %v", config.CORS.AllowedOrigins)
	}

	if len(config.Server.TrustedProxies) != 0 {
		t.Errorf("Expected no trusted proxies by default, got %v", config.Server.TrustedProxies)
	}
}

func TestLoadConfig_CustomEnvironment(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{
		"HOST":                 "0.0.0.0",
		"PORT":                 "9000",
		"ENVIRONMENT":          "production",
		"STORE_DRIVER":         "MONGO",
		"STORE_TIMEOUT":        "2s",
		"MONGO_URI":            "mongodb://mongo.example.com:27017",
		"MONGO_DATABASE":       "tasks_prod",
		"REDIS_ENABLED":        "true",
		"REDIS_HOST":           "redis.example.com",
		"REDIS_DB":             "1",
		"CACHE_TTL":            "1m",
		"JWT_SECRET":           "super-secret-key",
		"ACCESS_TOKEN_TTL":     "30m",
		"RATE_LIMIT_ENABLED":   "false",
		"RATE_LIMIT_RPM":       "200",
		"READ_TIMEOUT":         "45s",
		"CORS_ALLOWED_ORIGINS": "https://app.example.com, https://admin.example.com,",
		"TRUSTED_PROXIES":      "10.0.0.0/8,192.168.1.10",
	})

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with custom config, got: %v", err)
	}

	if config.GetServerAddr() != "0.0.0.0:9000" {
		t.Errorf("Expected server addr '0.0.0.0:9000', got %s", config.GetServerAddr())
	}

	if config.Store.Driver != DriverMongo {
		t.Errorf("Expected store driver 'mongo', got %s", config.Store.Driver)
	}

	if config.Store.Timeout != 2*time.Second {
		t.Errorf("Expected store timeout 2s, got %v", config.Store.Timeout)
	}

	if config.Mongo.URI != "mongodb://mongo.example.com:27017" {
		t.Errorf("Unexpected mongo URI %s", config.Mongo.URI)
	}

	if !config.Redis.Enabled || config.Redis.DB != 1 {
		t.Errorf("Expected Redis enabled on DB 1, got %+v", config.Redis)
	}

	if config.Cache.TTL != time.Minute {
		t.Errorf("Expected cache TTL 1m, got %v", config.Cache.TTL)
	}

	if config.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("Expected access token TTL 30m, got %v", config.Auth.AccessTokenTTL)
	}

	if config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be disabled")
	}

	if config.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Expected read timeout 45s, got %v", config.Server.ReadTimeout)
	}

	if len(config.CORS.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %v", config.CORS.AllowedOrigins)
	}

	if len(config.Server.TrustedProxies) != 2 || config.Server.TrustedProxies[0] != "10.0.0.0/8" {
		t.Errorf("Unexpected trusted proxies %v", config.Server.TrustedProxies)
	}
}

func TestLoadConfig_ProductionValidation(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "secure-jwt-secret",
	})

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("Expected error for missing database password in production")
	}

	if err.Error() != "database password is required in production" {
		t.Errorf("Expected specific error message, got: %v", err)
	}
}

func TestLoadConfig_ProductionJWTValidation(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{
		"ENVIRONMENT": "production",
		"DB_PASSWORD": "secure-db-password",
	})

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("Expected error for default JWT secret in production")
	}

	if err.Error() != "JWT secret must be set in production" {
		t.Errorf("Expected specific error message, got: %v", err)
	}
}

func TestLoadConfig_ProductionSQLiteNeedsNoPassword(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{
		"ENVIRONMENT":  "production",
		"STORE_DRIVER": "sqlite",
		"JWT_SECRET":   "secure-jwt-secret",
	})

	if _, err := LoadConfig(); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{"STORE_DRIVER": "cassandra"})

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for unsupported store driver")
	}
}

func TestLoadConfig_NonPositiveTokenTTL(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{"ACCESS_TOKEN_TTL": "-1h"})

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for negative token TTL")
	}
}

func TestConfig_GetDatabaseDSN(t *testing.T) {
	config := &Config{
		Store: StoreConfig{Driver: DriverPostgres},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
			SSLMode:  "require",
		},
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require"
	if actual := config.GetDatabaseDSN(); actual != expected {
		t.Errorf("Expected DSN '%s', got '%s'", expected, actual)
	}

	config.Store.Driver = DriverSQLite
	config.Database.SQLitePath = "/tmp/tasks.db"
	if actual := config.GetDatabaseDSN(); actual != "/tmp/tasks.db" {
		t.Errorf("Expected sqlite path, got '%s'", actual)
	}
}

func TestConfig_GetRedisAddr(t *testing.T) {
	config := &Config{
		Redis: RedisConfig{
			Host: "redis.example.com",
			Port: "6380",
		},
	}

	expected := "redis.example.com:6380"
	if actual := config.GetRedisAddr(); actual != expected {
		t.Errorf("Expected Redis addr '%s', got '%s'", expected, actual)
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		environment string
		expected    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, test := range tests {
		config := &Config{Server: ServerConfig{Environment: test.environment}}

		if actual := config.IsProduction(); actual != test.expected {
			t.Errorf("For environment '%s', expected IsProduction() = %v, got %v",
				test.environment, test.expected, actual)
		}
	}
}

func TestGetEnvAsInt(t *testing.T) {
	key := "TEST_INT_VAR"
	defaultValue := 42

	os.Unsetenv(key)
	if result := getEnvAsInt(key, defaultValue); result != defaultValue {
		t.Errorf("Expected default value %d, got %d", defaultValue, result)
	}

	t.Setenv(key, "100")
	if result := getEnvAsInt(key, defaultValue); result != 100 {
		t.Errorf("Expected env value 100, got %d", result)
	}

	t.Setenv(key, "not-a-number")
	if result := getEnvAsInt(key, defaultValue); result != defaultValue {
		t.Errorf("Expected default value %d for invalid int, got %d", defaultValue, result)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	key := "TEST_BOOL_VAR"
	defaultValue := true

	testCases := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{"invalid", defaultValue},
	}

	for _, tc := range testCases {
		t.Setenv(key, tc.value)
		if result := getEnvAsBool(key, defaultValue); result != tc.expected {
			t.Errorf("For value '%s', expected %v, got %v", tc.value, tc.expected, result)
		}
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"
	defaultValue := 30 * time.Second

	t.Setenv(key, "5m")
	if result := getEnvAsDuration(key, defaultValue); result != 5*time.Minute {
		t.Errorf("Expected env value 5m, got %v", result)
	}

	t.Setenv(key, "not-a-duration")
	if result := getEnvAsDuration(key, defaultValue); result != defaultValue {
		t.Errorf("Expected default value %v for invalid duration, got %v", defaultValue, result)
	}
}

func TestGetEnvAsList(t *testing.T) {
	key := "TEST_LIST_VAR"
	defaultValue := []string{"a"}

	t.Setenv(key, " , ")
	if result := getEnvAsList(key, defaultValue); len(result) != 1 || result[0] != "a" {
		t.Errorf("Expected default list for blank items, got %v", result)
	}

	t.Setenv(key, "x, y")
	if result := getEnvAsList(key, defaultValue); len(result) != 2 || result[1] != "y" {
		t.Errorf("Expected [x y], got %v", result)
	}
}

func BenchmarkLoadConfig(b *testing.B) {
	b.Setenv("ENVIRONMENT", "production")
	b.Setenv("DB_PASSWORD", "password")
	b.Setenv("JWT_SECRET", "secret")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig(); err != nil {
			b.Fatalf("Failed to load config: %v", err)
		}
	}
}
