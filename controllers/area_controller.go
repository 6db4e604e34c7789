package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/website-f/gate/models"
	"github.com/website-f/gate/services"
	"github.com/website-f/gate/services/container"
)

// InterfaceAreaController 定义区域控制器接口
type InterfaceAreaController interface {
	GetAreas()
	GetArea()
	CreateArea()
	UpdateArea()
	DeleteArea()
}

// AreaController 处理区域相关的请求
type AreaController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAreaController 创建一个新的区域控制器
func NewAreaController(ctx *gin.Context, container *container.ServiceContainer) *AreaController {
	return &AreaController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAreaFunc 返回一个处理区域请求的Gin处理函数
func HandleAreaFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAreaController(ctx, container)

		switch method {
		case "getAreas":
			controller.GetAreas()
		case "getArea":
			controller.GetArea()
		case "createArea":
			controller.CreateArea()
		case "updateArea":
			controller.UpdateArea()
		case "deleteArea":
			controller.DeleteArea()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// parseAreaID 解析路径中的区域ID
func (c *AreaController) parseAreaID() (uint, bool) {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的区域ID",
			"data":    nil,
		})
		return 0, false
	}
	return uint(id), true
}

// 1. GetAreas 获取所有区域列表
// @Summary 获取所有区域
// @Tags area
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Area
// @Router /areas [get]
func (c *AreaController) GetAreas() {
	areaService := c.Container.GetService("area").(services.InterfaceAreaService)

	areas, err := areaService.GetAllAreas()
	if err != nil {
		c.Ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "获取区域列表失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    areas,
	})
}

// 2. GetArea 获取单个区域详情
// @Summary 获取单个区域
// @Tags area
// @Produce json
// @Security BearerAuth
// @Param id path int true "区域ID"
// @Success 200 {object} models.Area
// @Router /areas/{id} [get]
func (c *AreaController) GetArea() {
	id, ok := c.parseAreaID()
	if !ok {
		return
	}

	areaService := c.Container.GetService("area").(services.InterfaceAreaService)
	area, err := areaService.GetAreaByID(id)
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
		"data":    area,
	})
}

// 3. CreateArea 创建新区域
// @Summary 创建区域
// @Tags area
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Area true "区域信息"
// @Success 200 {object} models.Area
// @Router /areas [post]
func (c *AreaController) CreateArea() {
	var area models.Area
	if err := c.Ctx.ShouldBindJSON(&area); err != nil || area.Name == "" {
		c.Ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "区域名称不能为空",
			"data":    nil,
		})
		return
	}

	areaService := c.Container.GetService("area").(services.InterfaceAreaService)
	if err := areaService.CreateArea(&area); err != nil {
		c.Ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "创建区域失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    area,
	})
}

// 4. UpdateArea 更新区域信息
// @Summary 更新区域
// @Tags area
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "区域ID"
// @Success 200 {object} models.Area
// @Router /areas/{id} [put]
func (c *AreaController) UpdateArea() {
	id, ok := c.parseAreaID()
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

	areaService := c.Container.GetService("area").(services.InterfaceAreaService)
	area, err := areaService.UpdateArea(id, updates)
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
		"data":    area,
	})
}

// 5. DeleteArea 删除区域
// @Summary 删除区域
// @Tags area
// @Produce json
// @Security BearerAuth
// @Param id path int true "区域ID"
// @Success 200 {object} map[string]interface{}
// @Router /areas/{id} [delete]
func (c *AreaController) DeleteArea() {
	id, ok := c.parseAreaID()
	if !ok {
		return
	}

	areaService := c.Container.GetService("area").(services.InterfaceAreaService)
	if err := areaService.DeleteArea(id); err != nil {
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
