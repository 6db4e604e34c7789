package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/website-f/gate/models"
	"github.com/website-f/gate/services"
	"github.com/website-f/gate/services/container"
)

// InterfaceUserController 定义用户控制器接口
type InterfaceUserController interface {
	GetUsers()
	GetUser()
	AddUser()
	UpdateUser()
	DeleteUser()
	BulkDeleteUsers()
	PushUserToDevices()
	GetUserDetails()
	MatchFace()
	BatchAddOffline()
}

// UserController 处理用户名册与白名单下发相关的请求
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController 创建一个新的用户控制器
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// AddUserRequest 外部接入的用户创建请求
type AddUserRequest struct {
	Icno           string `json:"icno" binding:"required" example:"990101015678"`
	Name           string `json:"name" example:"Tan Ah Kow"`
	Email          string `json:"email" example:"visitor@example.com"`
	UserImage      string `json:"user_image"` // base64人脸图片，可带data URI前缀
	OrderDetailID  int    `json:"order_detail_id" example:"1001"`
	OrderID        string `json:"order_id" example:"1001"`
	StartDate      string `json:"start_date" example:"2025-01-01 00:00:00"`
	ExpiredDateIn  string `json:"expired_date_in" example:"2025-01-01 12:00:00"`
	ExpiredDateOut string `json:"expired_date_out" example:"2025-01-01 23:59:59"`
}

// GetDetailsRequest 白名单详情查询请求
type GetDetailsRequest struct {
	IdNo string `json:"idNo" binding:"required" example:"990101015678"`
}

// MatchFaceRequest 人脸比对请求
type MatchFaceRequest struct {
	CleanBase64 string `json:"cleanBase64" binding:"required"`
}

// BatchAddRequest 离线批量创建请求
type BatchAddRequest struct {
	CreateUserLists []AddUserRequest `json:"createUserLists" binding:"required"`
}

// BatchItemResult 批量创建的单条结果
type BatchItemResult struct {
	Icno    string      `json:"icno"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	DB      interface{} `json:"db,omitempty"`
}

// BulkDeleteRequest 批量删除请求
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// HandleUserFunc 返回一个处理用户请求的Gin处理函数
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getUser":
			controller.GetUser()
		case "addUser":
			controller.AddUser()
		case "updateUser":
			controller.UpdateUser()
		case "deleteUser":
			controller.DeleteUser()
		case "bulkDeleteUsers":
			controller.BulkDeleteUsers()
		case "pushUserToDevices":
			controller.PushUserToDevices()
		case "getUserDetails":
			controller.GetUserDetails()
		case "matchFace":
			controller.MatchFace()
		case "batchAddOffline":
			controller.BatchAddOffline()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// buildUser 从接入请求组装用户记录，照片有图时落盘
func (c *UserController) buildUser(req *AddUserRequest, status string) *models.User {
	photoService := c.Container.GetService("photo").(services.InterfacePhotoService)

	photoPath := ""
	base64Image := ""
	if strings.TrimSpace(req.UserImage) != "" {
		base64Image = services.CleanBase64(req.UserImage)
		if saved, err := photoService.SavePhoto(req.Icno, req.UserImage); err == nil {
			photoPath = saved
		}
	}

	name := req.Name
	if name == "" {
		name = req.Icno
	}

	return &models.User{
		ID:             req.Icno,
		Name:           name,
		Email:          req.Email,
		Role:           "guest",
		Area:           "default",
		Status:         status,
		Photo:          photoPath,
		Base64:         base64Image,
		OrderDetailID:  req.OrderDetailID,
		OrderID:        req.OrderID,
		StartDate:      req.StartDate,
		ExpiredDateIn:  req.ExpiredDateIn,
		ExpiredDateOut: req.ExpiredDateOut,
	}
}

// persistIdentityChange 判断人脸重复重试产生的身份变更是否允许写回名册：
// 只有身份确实被改写、且重试轮至少一台设备成功时才持久化，失败的下发
// 不能改写名册主键
func persistIdentityChange(originalID, finalID string, results []models.SyncResult) bool {
	return finalID != originalID && models.AnySuccess(results)
}

// 1. GetUsers 获取所有用户列表
// @Summary 获取所有用户
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /users [get]
func (c *UserController) GetUsers() {
	userService := c.Container.GetService("user").(services.InterfaceUserService)

	users, err := userService.GetAllUsers()
	if err != nil {
		c.Ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "获取用户列表失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    users,
	})
}

// 2. GetUser 获取单个用户详情
// @Summary 获取单个用户
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户ID"
// @Success 200 {object} models.User
// @Router /users/{id} [get]
func (c *UserController) GetUser() {
	id := c.Ctx.Param("id")
	userService := c.Container.GetService("user").(services.InterfaceUserService)

	user, err := userService.GetUserByID(id)
	if err != nil {
		c.Ctx.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    user,
	})
}

// 3. AddUser 外部接入创建用户并下发全部设备
// @Summary 创建用户并同步到设备
// @Description 创建（或合并）用户记录，保存人脸照片，并把白名单下发到所有设备
// @Tags user
// @Accept json
// @Produce json
// @Param request body AddUserRequest true "用户创建请求"
// @Success 200 {object} map[string]interface{}
// @Router /add [post]
func (c *UserController) AddUser() {
	var req AddUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "IC number (icno) is required",
			"data":    nil,
		})
		return
	}

	if strings.TrimSpace(req.Icno) == "" {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "IC number (icno) is required",
			"data":    nil,
		})
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	syncService := c.Container.GetService("sync").(services.InterfaceSyncService)

	user := c.buildUser(&req, string(models.UserStatusPaid))

	operation, err := userService.SaveUser(user)
	if err != nil {
		c.Ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "Failed to add user: " + err.Error(),
			"data":    nil,
		})
		return
	}

	deviceResults := syncService.AddUserToAllDevices(user)

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "User added successfully",
		"data": gin.H{
			"db":      gin.H{"id": user.ID, "operation": operation},
			"devices": deviceResults,
		},
	})
}

// 4. UpdateUser 按合并规则更新用户
// @Summary 更新用户
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户ID"
// @Success 200 {object} models.User
// @Router /users/{id} [put]
func (c *UserController) UpdateUser() {
	id := c.Ctx.Param("id")
	userService := c.Container.GetService("user").(services.InterfaceUserService)

	var incoming models.User
	if err := c.Ctx.ShouldBindJSON(&incoming); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的请求参数",
			"data":    nil,
		})
		return
	}
	incoming.ID = id

	if _, err := userService.GetUserByID(id); err != nil {
		c.Ctx.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
			"data":    nil,
		})
		return
	}

	if _, err := userService.SaveUser(&incoming); err != nil {
		c.Ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "更新用户失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    incoming,
	})
}

// 5. DeleteUser 删除用户，并级联清理设备白名单与照片
// @Summary 删除用户
// @Description 删除本地记录，从所有设备移除白名单条目，并删除照片文件
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户ID"
// @Success 200 {object} map[string]interface{}
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser() {
	id := c.Ctx.Param("id")

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	syncService := c.Container.GetService("sync").(services.InterfaceSyncService)
	photoService := c.Container.GetService("photo").(services.InterfacePhotoService)

	// 先下发删除，再删本地记录
	deviceResults := syncService.DeleteUserFromAllDevices(id)

	user, err := userService.DeleteUser(id)
	if err != nil {
		c.Ctx.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
			"data":    gin.H{"devices": deviceResults},
		})
		return
	}

	if user.Photo != "" {
		if err := photoService.DeletePhoto(user.Photo); err != nil {
			c.Ctx.JSON(http.StatusOK, gin.H{
				"code":    0,
				"message": "用户已删除，照片清理失败: " + err.Error(),
				"data":    gin.H{"devices": deviceResults},
			})
			return
		}
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    gin.H{"devices": deviceResults},
	})
}

// 6. BulkDeleteUsers 批量删除用户
// @Summary 批量删除用户
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkDeleteRequest true "待删除的用户ID列表"
// @Success 200 {object} map[string]interface{}
// @Router /users/bulk-delete [post]
func (c *UserController) BulkDeleteUsers() {
	var req BulkDeleteRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的请求参数",
			"data":    nil,
		})
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	syncService := c.Container.GetService("sync").(services.InterfaceSyncService)
	photoService := c.Container.GetService("photo").(services.InterfacePhotoService)

	// 逐个从设备移除白名单
	deviceResults := make(map[string][]models.SyncResult, len(req.IDs))
	for _, id := range req.IDs {
		deviceResults[id] = syncService.DeleteUserFromAllDevices(id)
	}

	changes, photos, err := userService.BulkDeleteUsers(req.IDs)
	if err != nil {
		c.Ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "批量删除失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	for _, photo := range photos {
		_ = photoService.DeletePhoto(photo)
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data": gin.H{
			"changes": changes,
			"devices": deviceResults,
		},
	})
}

// 7. PushUserToDevices 把已入库用户重新下发到全部设备
// @Summary 重新下发用户白名单
// @Description 从名册读取用户并下发所有设备；设备报告人脸重复时用冲突身份自动重试一次，
// 重试成功后把身份变更持久化回名册，任一设备成功即标记为已同步
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param id path string true "用户ID"
// @Success 200 {array} models.SyncResult
// @Router /users/{id}/devices [post]
func (c *UserController) PushUserToDevices() {
	id := c.Ctx.Param("id")

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	syncService := c.Container.GetService("sync").(services.InterfaceSyncService)
	photoService := c.Container.GetService("photo").(services.InterfacePhotoService)

	user, err := userService.GetUserByID(id)
	if err != nil {
		c.Ctx.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
			"data":    nil,
		})
		return
	}

	// 从照片文件恢复下发用的base64图片
	if user.Photo != "" {
		if base64Image, err := photoService.LoadBase64(user.Photo); err == nil {
			user.Base64 = base64Image
		}
	}
	if user.Name == "" {
		user.Name = user.ID
	}

	results, finalID := syncService.AddUserWithRetry(user)

	// 人脸重复重试改写了身份且重试轮至少一台设备成功时，把变更持久化
	// 回名册；重试整轮失败时名册身份保持不变
	if persistIdentityChange(id, finalID, results) {
		if err := userService.ReassignUserID(id, finalID); err != nil {
			c.Ctx.JSON(http.StatusOK, gin.H{
				"code":    0,
				"message": "下发完成，身份变更持久化失败: " + err.Error(),
				"data":    results,
			})
			return
		}
	}

	if models.AnySuccess(results) {
		if err := userService.UpdateUserStatus(finalID, string(models.UserStatusPaid)); err != nil {
			c.Ctx.JSON(http.StatusOK, gin.H{
				"code":    0,
				"message": "下发完成，状态更新失败: " + err.Error(),
				"data":    results,
			})
			return
		}
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    results,
	})
}

// 8. GetUserDetails 查询所有设备上的白名单详情
// @Summary 查询设备白名单详情
// @Tags user
// @Accept json
// @Produce json
// @Param request body GetDetailsRequest true "身份证号"
// @Success 200 {array} models.SyncResult
// @Router /getdetails [post]
func (c *UserController) GetUserDetails() {
	var req GetDetailsRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "idNo is required in the request body.",
			"data":    nil,
		})
		return
	}

	syncService := c.Container.GetService("sync").(services.InterfaceSyncService)
	results := syncService.QueryUserDetail(req.IdNo)

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "User details retrieved from devices.",
		"data":    results,
	})
}

// 9. MatchFace 在所有设备上做人脸比对
// @Summary 人脸比对
// @Tags user
// @Accept json
// @Produce json
// @Param request body MatchFaceRequest true "base64人脸图片"
// @Success 200 {array} models.SyncResult
// @Router /face [post]
func (c *UserController) MatchFace() {
	var req MatchFaceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "cleanBase64 (base64) is required",
			"data":    nil,
		})
		return
	}

	syncService := c.Container.GetService("sync").(services.InterfaceSyncService)
	results := syncService.MatchFace(services.CleanBase64(req.CleanBase64))

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    results,
	})
}

// 10. BatchAddOffline 离线批量入库，不下发设备
// @Summary 离线批量创建用户
// @Description 批量写入本地名册，状态留空，后续由重新下发接口同步到设备；
// 单条失败不影响其余条目
// @Tags user
// @Accept json
// @Produce json
// @Param request body BatchAddRequest true "用户列表"
// @Success 200 {array} BatchItemResult
// @Router /offline [post]
func (c *UserController) BatchAddOffline() {
	var req BatchAddRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil || len(req.CreateUserLists) == 0 {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "No users to process",
			"data":    nil,
		})
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)

	results := make([]BatchItemResult, 0, len(req.CreateUserLists))
	for i := range req.CreateUserLists {
		item := &req.CreateUserLists[i]

		if strings.TrimSpace(item.Icno) == "" {
			results = append(results, BatchItemResult{
				Icno:    item.Icno,
				Success: false,
				Message: "IC number (icno) is required",
			})
			continue
		}

		user := c.buildUser(item, "")
		operation, err := userService.SaveUser(user)
		if err != nil {
			results = append(results, BatchItemResult{
				Icno:    item.Icno,
				Success: false,
				Message: err.Error(),
			})
			continue
		}

		results = append(results, BatchItemResult{
			Icno:    item.Icno,
			Success: true,
			DB:      gin.H{"id": user.ID, "operation": operation},
		})
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "Offline batch processing completed",
		"data":    results,
	})
}
