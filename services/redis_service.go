package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
)

// InterfaceRedisService 定义Redis缓存服务接口
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CacheBackofficeToken(token string, expiration time.Duration) error
	GetBackofficeToken() (string, error)
	CacheDeviceStatus(ip string, status models.DeviceStatus) error
	GetDeviceStatus(ip string) (models.DeviceStatus, error)
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Config *config.Config
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &RedisService{
		Client: client,
		Config: cfg,
		Ctx:    context.Background(),
	}
}

// Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// CacheBackofficeToken 缓存上游API令牌
func (s *RedisService) CacheBackofficeToken(token string, expiration time.Duration) error {
	return s.Client.Set(s.Ctx, "backoffice:token", token, expiration).Err()
}

// GetBackofficeToken 读取缓存的上游API令牌
func (s *RedisService) GetBackofficeToken() (string, error) {
	return s.Client.Get(s.Ctx, "backoffice:token").Result()
}

// CacheDeviceStatus 缓存设备最近一次探测结果
func (s *RedisService) CacheDeviceStatus(ip string, status models.DeviceStatus) error {
	return s.Client.Set(s.Ctx, "device_status:"+ip, string(status), s.Config.DeviceStatusTTL()).Err()
}

// GetDeviceStatus 读取设备最近一次探测结果缓存
func (s *RedisService) GetDeviceStatus(ip string) (models.DeviceStatus, error) {
	val, err := s.Client.Get(s.Ctx, "device_status:"+ip).Result()
	if err != nil {
		return "", err
	}
	return models.DeviceStatus(val), nil
}
