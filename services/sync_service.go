package services

import (
	"fmt"
	"sync"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
)

// InterfaceSyncService 定义设备扇出同步服务接口。
//
// 所有操作按当前设备清单快照逐台下发，返回结果顺序与清单顺序一致，
// 每台设备一条SyncResult；单台失败不影响其余设备。整体成功与否由
// 调用方定义（通常是"至少一台result为0"）。
//
// 对同一用户标识的并发扇出会在设备侧产生竞争，调用方需要自行按
// 标识串行化，本服务不提供该串行化。
type InterfaceSyncService interface {
	AddUserToAllDevices(user *models.User) []models.SyncResult
	AddUserWithRetry(user *models.User) ([]models.SyncResult, string)
	DeleteUserFromAllDevices(idno string) []models.SyncResult
	QueryUserDetail(idno string) []models.SyncResult
	MatchFace(picData string) []models.SyncResult
}

// SyncService 设备扇出同步服务实现
type SyncService struct {
	Config  *config.Config
	Devices InterfaceDeviceRoster
	Client  InterfaceWhitelistClient
	Events  InterfaceEventService
}

// InterfaceDeviceRoster 扇出所需的设备清单能力
type InterfaceDeviceRoster interface {
	GetAllDevices() ([]models.Device, error)
}

// NewSyncService 创建一个新的设备扇出同步服务
func NewSyncService(cfg *config.Config, devices InterfaceDeviceRoster, client InterfaceWhitelistClient, events InterfaceEventService) InterfaceSyncService {
	return &SyncService{
		Config:  cfg,
		Devices: devices,
		Client:  client,
		Events:  events,
	}
}

// fanOut 对设备清单中的每台设备执行一次操作并聚合结果。
// probe为true时先做健康探测，离线设备直接合成离线结果，不再调用
// 指令客户端，避免把指令超时浪费在挂死的设备上。
func (s *SyncService) fanOut(probe bool, call func(ip string) models.SyncResult) []models.SyncResult {
	devices, err := s.Devices.GetAllDevices()
	if err != nil {
		return []models.SyncResult{{
			Result:  models.ResultLocalFailure,
			Message: "Failed to get devices from DB.",
		}}
	}

	// 没有设备属于"无事可做"的成功，返回单条提示而不是空序列
	if len(devices) == 0 {
		return []models.SyncResult{{
			Result:  models.ResultNoDevices,
			Message: models.MsgNoDevices,
		}}
	}

	results := make([]models.SyncResult, len(devices))
	var wg sync.WaitGroup

	for i, device := range devices {
		wg.Add(1)
		go func(i int, ip string) {
			defer wg.Done()
			// 单台设备的意外错误不能中断其余设备
			defer func() {
				if r := recover(); r != nil {
					results[i] = models.SyncResult{
						Device:  ip,
						Result:  models.ResultLocalFailure,
						Message: fmt.Sprintf("API call failed: %v", r),
					}
				}
			}()

			if probe && s.Client.ProbeDevice(ip) != models.DeviceStatusOnline {
				results[i] = models.SyncResult{
					Device:  ip,
					Result:  models.ResultLocalFailure,
					Message: models.MsgDeviceOffline,
				}
				return
			}

			results[i] = call(ip)
		}(i, device.IP)
	}

	wg.Wait()
	return results
}

// AddUserToAllDevices 把用户白名单下发到所有设备
func (s *SyncService) AddUserToAllDevices(user *models.User) []models.SyncResult {
	results := s.fanOut(true, func(ip string) models.SyncResult {
		return s.Client.AddWhitelist(ip, user)
	})

	if s.Events != nil {
		s.Events.PublishSyncResult("addWhitelist", user.ID, results)
	}
	return results
}

// AddUserWithRetry 下发用户白名单并处理人脸重复。
//
// 设备报告人脸重复时，消息里带着已登记的冲突身份；用该身份替换
// idno/icno后重新下发一次。重试只做一次，重试结果中再次出现重复
// 信号不再追击，防止在厂商消息异常时陷入循环。返回最终使用的身份
// 标识，若与原标识不同，由调用方负责把变更持久化回本地名册。
func (s *SyncService) AddUserWithRetry(user *models.User) ([]models.SyncResult, string) {
	results := s.AddUserToAllDevices(user)

	for _, r := range results {
		duplicateIC, ok := ParseDuplicateFace(r.Result, r.Message)
		if !ok {
			continue
		}

		config.Info("检测到人脸重复，使用冲突身份 %s 重试下发", duplicateIC)

		retryUser := *user
		retryUser.ID = duplicateIC
		retryUser.Name = duplicateIC

		return s.AddUserToAllDevices(&retryUser), duplicateIC
	}

	return results, user.ID
}

// DeleteUserFromAllDevices 从所有设备删除某身份的白名单条目。
// 删除直接下发，不做健康探测，离线设备表现为本地失败结果。
func (s *SyncService) DeleteUserFromAllDevices(idno string) []models.SyncResult {
	results := s.fanOut(false, func(ip string) models.SyncResult {
		return s.Client.DeleteWhitelist(ip, idno)
	})

	if s.Events != nil {
		s.Events.PublishSyncResult("deleteWhitelist", idno, results)
	}
	return results
}

// QueryUserDetail 查询所有设备上某身份的白名单详情
func (s *SyncService) QueryUserDetail(idno string) []models.SyncResult {
	return s.fanOut(true, func(ip string) models.SyncResult {
		return s.Client.QueryWhitelistDetail(ip, idno)
	})
}

// MatchFace 在所有设备上做人脸比对
func (s *SyncService) MatchFace(picData string) []models.SyncResult {
	return s.fanOut(true, func(ip string) models.SyncResult {
		return s.Client.QueryFaceFeature(ip, picData)
	})
}
