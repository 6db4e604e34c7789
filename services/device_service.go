package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
	"github.com/website-f/gate/utils"
)

// InterfaceDeviceService defines the device roster service interface
type InterfaceDeviceService interface {
	GetAllDevices() ([]models.Device, error)
	GetDeviceByID(id uint) (*models.Device, error)
	CreateDevice(device *models.Device) error
	UpdateDevice(id uint, updates map[string]interface{}) (*models.Device, error)
	DeleteDevice(id uint) error
	RefreshDeviceStatus(id uint) (*models.Device, error)
	RefreshAllDeviceStatuses() ([]models.Device, error)
	ProbeByIP(ip string) models.DeviceStatus
	OpenGate(id uint) (*models.VendorResponse, error)
	RebootDevice(id uint) (*models.VendorResponse, error)
}

// DeviceService 提供设备名册相关的服务
type DeviceService struct {
	DB     *gorm.DB
	Config *config.Config
	Client InterfaceWhitelistClient
	Cache  InterfaceRedisService
	Events InterfaceEventService
}

// NewDeviceService 创建一个新的设备服务
func NewDeviceService(db *gorm.DB, cfg *config.Config, client InterfaceWhitelistClient, cache InterfaceRedisService, events InterfaceEventService) InterfaceDeviceService {
	return &DeviceService{
		DB:     db,
		Config: cfg,
		Client: client,
		Cache:  cache,
		Events: events,
	}
}

// GetAllDevices 获取所有设备列表
func (s *DeviceService) GetAllDevices() ([]models.Device, error) {
	var devices []models.Device
	if err := s.DB.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDeviceByID 根据ID获取设备
func (s *DeviceService) GetDeviceByID(id uint) (*models.Device, error) {
	var device models.Device
	if err := s.DB.First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("设备不存在")
		}
		return nil, err
	}
	return &device, nil
}

// CreateDevice 创建新设备
func (s *DeviceService) CreateDevice(device *models.Device) error {
	// 验证IP唯一性
	var count int64
	if err := s.DB.Model(&models.Device{}).Where("ip = ?", device.IP).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("设备IP已存在")
	}

	// 设置默认状态
	if device.Status == "" {
		device.Status = models.DeviceStatusOffline
	}

	return s.DB.Create(device).Error
}

// UpdateDevice 更新设备信息
func (s *DeviceService) UpdateDevice(id uint, updates map[string]interface{}) (*models.Device, error) {
	device, err := s.GetDeviceByID(id)
	if err != nil {
		return nil, err
	}

	// 如果更新IP，需要检查唯一性
	if ip, ok := updates["ip"].(string); ok && ip != device.IP {
		var count int64
		if err := s.DB.Model(&models.Device{}).Where("ip = ? AND id != ?", ip, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("设备IP已存在")
		}
	}

	if err := s.DB.Model(device).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetDeviceByID(id)
}

// DeleteDevice 删除设备
func (s *DeviceService) DeleteDevice(id uint) error {
	device, err := s.GetDeviceByID(id)
	if err != nil {
		return err
	}
	return s.DB.Delete(device).Error
}

// RefreshDeviceStatus 探测单台设备并更新状态记录
func (s *DeviceService) RefreshDeviceStatus(id uint) (*models.Device, error) {
	device, err := s.GetDeviceByID(id)
	if err != nil {
		return nil, err
	}

	status := s.probeAndCache(device.IP)
	return s.recordStatus(device, status)
}

// RefreshAllDeviceStatuses 探测全部设备并更新状态记录
func (s *DeviceService) RefreshAllDeviceStatuses() ([]models.Device, error) {
	devices, err := s.GetAllDevices()
	if err != nil {
		return nil, err
	}

	refreshed := make([]models.Device, 0, len(devices))
	for i := range devices {
		status := s.probeAndCache(devices[i].IP)
		updated, err := s.recordStatus(&devices[i], status)
		if err != nil {
			config.Warning("更新设备 %s 状态失败: %v", devices[i].IP, err)
			refreshed = append(refreshed, devices[i])
			continue
		}
		refreshed = append(refreshed, *updated)
	}
	return refreshed, nil
}

// ProbeByIP 获取任意IP的设备状态。缓存TTL内直接复用上次探测结果，
// 未命中时实际探测并回填缓存
func (s *DeviceService) ProbeByIP(ip string) models.DeviceStatus {
	if s.Cache != nil {
		if status, err := s.Cache.GetDeviceStatus(ip); err == nil && status != "" {
			return status
		}
	}
	return s.probeAndCache(ip)
}

// probeAndCache 实际探测设备并把结果写入缓存。刷新路径直接走这里，
// 绕过缓存拿最新状态
func (s *DeviceService) probeAndCache(ip string) models.DeviceStatus {
	status := s.Client.ProbeDevice(ip)

	if s.Cache != nil {
		if err := s.Cache.CacheDeviceStatus(ip, status); err != nil {
			config.Warning("缓存设备 %s 状态失败: %v", ip, err)
		}
	}
	return status
}

// recordStatus 把探测结果写回设备记录，状态变化时推送事件
func (s *DeviceService) recordStatus(device *models.Device, status models.DeviceStatus) (*models.Device, error) {
	changed := device.Status != status

	updates := map[string]interface{}{
		"status":    status,
		"last_seen": utils.FormatDeviceTime(time.Now()),
	}
	if err := s.DB.Model(device).Updates(updates).Error; err != nil {
		return nil, err
	}

	if changed && s.Events != nil {
		s.Events.PublishDeviceStatus(device.IP, status)
	}

	device.Status = status
	return device, nil
}

// OpenGate 远程开闸
func (s *DeviceService) OpenGate(id uint) (*models.VendorResponse, error) {
	device, err := s.GetDeviceByID(id)
	if err != nil {
		return nil, err
	}
	return s.Client.RemoteOpen(device.IP)
}

// RebootDevice 重启设备
func (s *DeviceService) RebootDevice(id uint) (*models.VendorResponse, error) {
	device, err := s.GetDeviceByID(id)
	if err != nil {
		return nil, err
	}
	return s.Client.RebootDevice(device.IP)
}
