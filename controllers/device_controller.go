package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/website-f/gate/models"
	"github.com/website-f/gate/services"
	"github.com/website-f/gate/services/container"
)

// InterfaceDeviceController 定义设备控制器接口
type InterfaceDeviceController interface {
	GetDevices()
	GetDevice()
	CreateDevice()
	UpdateDevice()
	DeleteDevice()
	RefreshDevice()
	RefreshDevices()
	OpenGate()
	RebootDevice()
	CheckDeviceHealth()
}

// DeviceController 处理设备名册与设备控制相关的请求
type DeviceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDeviceController 创建一个新的设备控制器
func NewDeviceController(ctx *gin.Context, container *container.ServiceContainer) *DeviceController {
	return &DeviceController{
		Ctx:       ctx,
		Container: container,
	}
}

// DeviceHealthRequest 设备健康探测请求
type DeviceHealthRequest struct {
	IP string `json:"ip" binding:"required" example:"192.168.1.100"`
}

// HandleDeviceFunc 返回一个处理设备请求的Gin处理函数
func HandleDeviceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDeviceController(ctx, container)

		switch method {
		case "getDevices":
			controller.GetDevices()
		case "getDevice":
			controller.GetDevice()
		case "createDevice":
			controller.CreateDevice()
		case "updateDevice":
			controller.UpdateDevice()
		case "deleteDevice":
			controller.DeleteDevice()
		case "refreshDevice":
			controller.RefreshDevice()
		case "refreshDevices":
			controller.RefreshDevices()
		case "openGate":
			controller.OpenGate()
		case "rebootDevice":
			controller.RebootDevice()
		case "checkDeviceHealth":
			controller.CheckDeviceHealth()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// parseDeviceID 解析路径中的设备ID
func (c *DeviceController) parseDeviceID() (uint, bool) {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的设备ID",
			"data":    nil,
		})
		return 0, false
	}
	return uint(id), true
}

// 1. GetDevices 获取所有设备列表
// @Summary 获取所有设备
// @Tags device
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Device
// @Router /devices [get]
func (c *DeviceController) GetDevices() {
	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)

	devices, err := deviceService.GetAllDevices()
	if err != nil {
		c.Ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "获取设备列表失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    devices,
	})
}

// 2. GetDevice 获取单个设备详情
// @Summary 获取单个设备
// @Tags device
// @Produce json
// @Security BearerAuth
// @Param id path int true "设备ID"
// @Success 200 {object} models.Device
// @Router /devices/{id} [get]
func (c *DeviceController) GetDevice() {
	id, ok := c.parseDeviceID()
	if !ok {
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	device, err := deviceService.GetDeviceByID(id)
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
		"data":    device,
	})
}

// 3. CreateDevice 登记新设备
// @Summary 创建设备
// @Tags device
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Device true "设备信息"
// @Success 200 {object} models.Device
// @Router /devices [post]
func (c *DeviceController) CreateDevice() {
	var device models.Device
	if err := c.Ctx.ShouldBindJSON(&device); err != nil || device.IP == "" {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "设备IP不能为空",
			"data":    nil,
		})
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	if err := deviceService.CreateDevice(&device); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    device,
	})
}

// 4. UpdateDevice 更新设备信息
// @Summary 更新设备
// @Tags device
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "设备ID"
// @Success 200 {object} models.Device
// @Router /devices/{id} [put]
func (c *DeviceController) UpdateDevice() {
	id, ok := c.parseDeviceID()
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Ctx.ShouldBindJSON(&updates); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的请求参数",
			"data":    nil,
		})
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	device, err := deviceService.UpdateDevice(id, updates)
	if err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    device,
	})
}

// 5. DeleteDevice 删除设备
// @Summary 删除设备
// @Tags device
// @Produce json
// @Security BearerAuth
// @Param id path int true "设备ID"
// @Success 200 {object} map[string]interface{}
// @Router /devices/{id} [delete]
func (c *DeviceController) DeleteDevice() {
	id, ok := c.parseDeviceID()
	if !ok {
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	if err := deviceService.DeleteDevice(id); err != nil {
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
		"data":    nil,
	})
}

// 6. RefreshDevice 探测单台设备并刷新状态
// @Summary 刷新单台设备状态
// @Tags device
// @Produce json
// @Security BearerAuth
// @Param id path int true "设备ID"
// @Success 200 {object} models.Device
// @Router /devices/{id}/refresh [post]
func (c *DeviceController) RefreshDevice() {
	id, ok := c.parseDeviceID()
	if !ok {
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	device, err := deviceService.RefreshDeviceStatus(id)
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
		"data":    device,
	})
}

// 7. RefreshDevices 探测全部设备并刷新状态
// @Summary 刷新全部设备状态
// @Tags device
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Device
// @Router /devices/refresh [post]
func (c *DeviceController) RefreshDevices() {
	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)

	devices, err := deviceService.RefreshAllDeviceStatuses()
	if err != nil {
		c.Ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "刷新设备状态失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    devices,
	})
}

// 8. OpenGate 远程开闸
// @Summary 远程开闸
// @Tags device
// @Produce json
// @Security BearerAuth
// @Param id path int true "设备ID"
// @Success 200 {object} models.VendorResponse
// @Router /devices/{id}/open [post]
func (c *DeviceController) OpenGate() {
	id, ok := c.parseDeviceID()
	if !ok {
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	resp, err := deviceService.OpenGate(id)
	if err != nil {
		c.Ctx.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    resp,
	})
}

// 9. RebootDevice 远程重启设备
// @Summary 远程重启设备
// @Tags device
// @Produce json
// @Security BearerAuth
// @Param id path int true "设备ID"
// @Success 200 {object} models.VendorResponse
// @Router /devices/{id}/reboot [post]
func (c *DeviceController) RebootDevice() {
	id, ok := c.parseDeviceID()
	if !ok {
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	resp, err := deviceService.RebootDevice(id)
	if err != nil {
		c.Ctx.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    resp,
	})
}

// 10. CheckDeviceHealth 按IP探测设备在线状态
// @Summary 探测设备健康状态
// @Description 对指定IP做一次探测，1秒内无响应即视为离线
// @Tags device
// @Accept json
// @Produce json
// @Param request body DeviceHealthRequest true "设备IP"
// @Success 200 {object} map[string]interface{}
// @Router /device/status [post]
func (c *DeviceController) CheckDeviceHealth() {
	var req DeviceHealthRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "设备IP不能为空",
			"data":    nil,
		})
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	status := deviceService.ProbeByIP(req.IP)

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data": gin.H{
			"ip":     req.IP,
			"status": status,
		},
	})
}
