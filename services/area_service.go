package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
)

// InterfaceAreaService defines the area service interface
type InterfaceAreaService interface {
	GetAllAreas() ([]models.Area, error)
	GetAreaByID(id uint) (*models.Area, error)
	CreateArea(area *models.Area) error
	UpdateArea(id uint, updates map[string]interface{}) (*models.Area, error)
	DeleteArea(id uint) error
}

// AreaService 提供区域相关的服务
type AreaService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAreaService 创建一个新的区域服务
func NewAreaService(db *gorm.DB, cfg *config.Config) InterfaceAreaService {
	return &AreaService{
		DB:     db,
		Config: cfg,
	}
}

// GetAllAreas 获取所有区域列表
func (s *AreaService) GetAllAreas() ([]models.Area, error) {
	var areas []models.Area
	if err := s.DB.Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// GetAreaByID 根据ID获取区域
func (s *AreaService) GetAreaByID(id uint) (*models.Area, error) {
	var area models.Area
	if err := s.DB.First(&area, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("区域不存在")
		}
		return nil, err
	}
	return &area, nil
}

// CreateArea 创建新区域
func (s *AreaService) CreateArea(area *models.Area) error {
	return s.DB.Create(area).Error
}

// UpdateArea 更新区域信息
func (s *AreaService) UpdateArea(id uint, updates map[string]interface{}) (*models.Area, error) {
	area, err := s.GetAreaByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(area).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetAreaByID(id)
}

// DeleteArea 删除区域
func (s *AreaService) DeleteArea(id uint) error {
	area, err := s.GetAreaByID(id)
	if err != nil {
		return err
	}
	return s.DB.Delete(area).Error
}
