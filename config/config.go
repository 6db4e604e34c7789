package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // 数据库迁移模式: "auto"(默认), "drop"(删除重建)

	// Server
	ServerPort string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// 闸机设备接入配置
	DevicePass       string // 设备共享密码，所有设备统一配置
	DevicePort       string // 设备白名单协议端口
	ProbeTimeoutMS   int    // 设备健康探测超时（毫秒）
	CommandTimeoutS  int    // 设备指令超时（秒）
	DeviceStatusTTLS int    // Redis中设备状态缓存时长（秒）

	// Backoffice 上游API
	BackofficeAPIURL string
	APIEmail         string
	APIPassword      string
	StoreID          string

	// 照片存储
	UploadDir string

	// MQTT 事件推送
	MQTTBrokerURL string
	MQTTClientID  string

	// JWT Authentication
	JWTSecretKey string

	// Admin
	DefaultAdminPassword string
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	// Get environment type (default to LOCAL if not set)
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	// Set prefix based on environment type
	if strings.ToUpper(envType) == "LOCAL" {
		prefix = "LOCAL_"
	} else if strings.ToUpper(envType) == "SERVER" {
		prefix = "SERVER_"
	} else {
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	fmt.Printf("Loading configuration for environment: %s\n", envType)

	return &Config{
		// Environment type
		EnvType: envType,

		// Database config - use environment-specific variables if available
		DBHost:          getEnv(prefix+"DB_HOST", getEnv("DB_HOST", "localhost")),
		DBUser:          getEnv(prefix+"DB_USER", getEnv("DB_USER", "root")),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", getEnv("DB_PASSWORD", "")),
		DBName:          getEnv(prefix+"DB_NAME", getEnv("DB_NAME", "gate_db")),
		DBPort:          getEnv(prefix+"DB_PORT", getEnv("DB_PORT", "3306")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "auto")),

		// Server config
		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "3000")),

		// Redis config
		RedisHost:     getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "localhost")),
		RedisPort:     getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisPassword: getEnv(prefix+"REDIS_PASSWORD", getEnv("REDIS_PASSWORD", "")),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// 设备接入配置
		DevicePass:       getEnv("DEVICE_PASS", "888888"),
		DevicePort:       getEnv("DEVICE_PORT", "9090"),
		ProbeTimeoutMS:   getEnvAsInt("DEVICE_PROBE_TIMEOUT_MS", 1000),
		CommandTimeoutS:  getEnvAsInt("DEVICE_COMMAND_TIMEOUT_S", 15),
		DeviceStatusTTLS: getEnvAsInt("DEVICE_STATUS_TTL_S", 30),

		// Backoffice 上游API配置
		BackofficeAPIURL: getEnv("BACKOFFICE_API_URL", "https://dev-backoffice-api.qbot.jp/api"),
		APIEmail:         getEnv("API_EMAIL", ""),
		APIPassword:      getEnv("API_PASSWORD", ""),
		StoreID:          getEnv("STORE_ID", "1"),

		// 照片存储目录
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		// MQTT配置，BrokerURL为空时事件推送自动停用
		MQTTBrokerURL: getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "gate-http-service"),

		// JWT Config
		JWTSecretKey: getEnv("JWT_SECRET_KEY", "gate-secret-key-change-in-production"),

		// Admin Config
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true&multiStatements=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// ProbeTimeout 设备健康探测超时
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}

// CommandTimeout 设备指令超时
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutS) * time.Second
}

// DeviceStatusTTL Redis设备状态缓存时长
func (c *Config) DeviceStatusTTL() time.Duration {
	return time.Duration(c.DeviceStatusTTLS) * time.Second
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
