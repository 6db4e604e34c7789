package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/website-f/gate/internal/error/code"
	"github.com/website-f/gate/internal/error/response"
	"github.com/website-f/gate/services"
	"github.com/website-f/gate/services/container"
)

// InterfaceSyncController 定义对账控制器接口
type InterfaceSyncController interface {
	PerformSync()
	ForwardOrder()
}

// SyncController 处理上游对账相关的请求
type SyncController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewSyncController 创建一个新的对账控制器
func NewSyncController(ctx *gin.Context, container *container.ServiceContainer) *SyncController {
	return &SyncController{
		Ctx:       ctx,
		Container: container,
	}
}

// ForwardOrderRequest 订单透传请求
type ForwardOrderRequest struct {
	OrderData interface{} `json:"orderData" binding:"required"`
}

// HandleSyncFunc 返回一个处理对账请求的Gin处理函数
func HandleSyncFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewSyncController(ctx, container)

		switch method {
		case "performSync":
			controller.PerformSync()
		case "forwardOrder":
			controller.ForwardOrder()
		default:
			response.Fail(ctx, code.ErrBind, nil)
		}
	}
}

// 1. PerformSync 触发一次上游对账
// @Summary 执行上游对账
// @Description 登录上游API，拉取待同步订单，逐条物化本地用户并扇出到所有设备。
// 认证或拉取失败对整个任务是致命的，单条订单失败只影响该条
// @Tags sync
// @Produce json
// @Success 200 {object} services.SyncReport
// @Router /sync [post]
func (c *SyncController) PerformSync() {
	backofficeService := c.Container.GetService("backoffice").(services.InterfaceBackofficeService)

	report, err := backofficeService.PerformSync()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrSyncFailed, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, report)
}

// 2. ForwardOrder 把订单透传到上游
// @Summary 订单透传
// @Description 使用请求携带的令牌把订单数据原样转发给上游，返回上游的状态码和响应体
// @Tags sync
// @Accept json
// @Produce json
// @Param token query string true "上游访问令牌"
// @Param request body ForwardOrderRequest true "订单数据"
// @Success 200 {object} map[string]interface{}
// @Router /orders/store [post]
func (c *SyncController) ForwardOrder() {
	token := c.Ctx.Query("token")
	if token == "" {
		token = extractBearer(c.Ctx.GetHeader("Authorization"))
	}
	if token == "" {
		response.FailWithMessage(c.Ctx, code.ErrTokenInvalid, "缺少上游访问令牌", nil)
		return
	}

	var req ForwardOrderRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "orderData不能为空", nil)
		return
	}

	backofficeService := c.Container.GetService("backoffice").(services.InterfaceBackofficeService)
	status, body, err := backofficeService.ForwardOrder(token, req.OrderData)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrUpstreamFetch, err.Error(), nil)
		return
	}

	c.Ctx.Data(status, "application/json", body)
}

// extractBearer 从授权头中提取令牌
func extractBearer(authHeader string) string {
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
