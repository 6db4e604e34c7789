package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/controllers"
	_ "github.com/website-f/gate/docs"
	"github.com/website-f/gate/middleware"
	"github.com/website-f/gate/services/container"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})

	// 创建Redis客户端
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 健康检查
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 认证路由
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))

	// 外部接入路由：创建用户并下发设备、查询白名单详情、人脸比对、离线批量入库
	api.POST("/add", controllers.HandleUserFunc(container, "addUser"))
	api.POST("/getdetails", controllers.HandleUserFunc(container, "getUserDetails"))
	api.POST("/face", controllers.HandleUserFunc(container, "matchFace"))
	api.POST("/offline", controllers.HandleUserFunc(container, "batchAddOffline"))

	// 上游对账路由
	api.POST("/sync", controllers.HandleSyncFunc(container, "performSync"))
	api.POST("/orders/store", controllers.HandleSyncFunc(container, "forwardOrder"))

	// 设备健康检测路由
	api.POST("/device/status", controllers.HandleDeviceFunc(container, "checkDeviceHealth"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("/")
	auth.Use(middleware.AuthenticateSystemAdmin())

	// 管理员路由
	auth.Group("/admin").GET("", controllers.HandleAdminFunc(container, "getAdmins"))
	auth.Group("/admin").POST("", controllers.HandleAdminFunc(container, "createAdmin"))

	// 用户名册路由
	auth.Group("/users").GET("", controllers.HandleUserFunc(container, "getUsers"))
	auth.Group("/users").GET("/:id", controllers.HandleUserFunc(container, "getUser"))
	auth.Group("/users").PUT("/:id", controllers.HandleUserFunc(container, "updateUser"))
	auth.Group("/users").DELETE("/:id", controllers.HandleUserFunc(container, "deleteUser"))
	auth.Group("/users").POST("/bulk-delete", controllers.HandleUserFunc(container, "bulkDeleteUsers"))
	// 把已入库用户重新下发到全部设备
	auth.Group("/users").POST("/:id/devices", controllers.HandleUserFunc(container, "pushUserToDevices"))

	// 设备路由
	auth.Group("/devices").GET("", controllers.HandleDeviceFunc(container, "getDevices"))
	auth.Group("/devices").GET("/:id", controllers.HandleDeviceFunc(container, "getDevice"))
	auth.Group("/devices").POST("", controllers.HandleDeviceFunc(container, "createDevice"))
	auth.Group("/devices").PUT("/:id", controllers.HandleDeviceFunc(container, "updateDevice"))
	auth.Group("/devices").DELETE("/:id", controllers.HandleDeviceFunc(container, "deleteDevice"))
	auth.Group("/devices").POST("/refresh", controllers.HandleDeviceFunc(container, "refreshDevices"))
	auth.Group("/devices").POST("/:id/refresh", controllers.HandleDeviceFunc(container, "refreshDevice"))
	auth.Group("/devices").POST("/:id/open", controllers.HandleDeviceFunc(container, "openGate"))
	auth.Group("/devices").POST("/:id/reboot", controllers.HandleDeviceFunc(container, "rebootDevice"))

	// 区域路由
	auth.Group("/areas").GET("", controllers.HandleAreaFunc(container, "getAreas"))
	auth.Group("/areas").GET("/:id", controllers.HandleAreaFunc(container, "getArea"))
	auth.Group("/areas").POST("", controllers.HandleAreaFunc(container, "createArea"))
	auth.Group("/areas").PUT("/:id", controllers.HandleAreaFunc(container, "updateArea"))
	auth.Group("/areas").DELETE("/:id", controllers.HandleAreaFunc(container, "deleteArea"))
}
