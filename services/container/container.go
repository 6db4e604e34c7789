package container

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/services"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService   services.InterfaceJWTService
	redisService services.InterfaceRedisService
	eventService services.InterfaceEventService

	// 设备协议客户端
	whitelistClient services.InterfaceWhitelistClient

	// 业务服务
	userService       services.InterfaceUserService
	deviceService     services.InterfaceDeviceService
	areaService       services.InterfaceAreaService
	adminService      services.InterfaceAdminService
	photoService      services.InterfacePhotoService
	syncService       services.InterfaceSyncService
	backofficeService services.InterfaceBackofficeService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis连接测试失败: %v，将不使用Redis缓存", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config)
	c.redisService = services.NewRedisService(c.config)

	// 初始化MQTT事件推送服务
	c.eventService = services.NewEventService(c.config)
	if err := c.eventService.Connect(); err != nil {
		log.Printf("MQTT服务连接失败: %v", err)
	}

	// 初始化设备协议客户端
	c.whitelistClient = services.NewWhitelistClient(c.config)

	// 初始化业务服务
	c.userService = services.NewUserService(c.db, c.config)
	c.deviceService = services.NewDeviceService(c.db, c.config, c.whitelistClient, c.redisService, c.eventService)
	c.areaService = services.NewAreaService(c.db, c.config)
	c.adminService = services.NewAdminService(c.db, c.config)
	c.photoService = services.NewPhotoService(c.config)

	// 初始化扇出同步服务与上游对账服务
	c.syncService = services.NewSyncService(c.config, c.deviceService, c.whitelistClient, c.eventService)
	c.backofficeService = services.NewBackofficeService(c.config, c.userService, c.syncService, c.photoService, c.redisService, c.eventService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "event":
		return c.eventService
	case "whitelist_client":
		return c.whitelistClient
	case "user":
		return c.userService
	case "device":
		return c.deviceService
	case "area":
		return c.areaService
	case "admin":
		return c.adminService
	case "photo":
		return c.photoService
	case "sync":
		return c.syncService
	case "backoffice":
		return c.backofficeService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}
