package models

import "encoding/json"

// 设备协议结果码约定：0为厂商成功，-1为本地失败（超时、不可达、
// 协议错误），其余非零值原样透传厂商返回。
const (
	ResultOK           = 0
	ResultLocalFailure = -1
	ResultNoDevices    = 1
)

// MsgDeviceOffline 探测到设备离线时合成的结果消息
const MsgDeviceOffline = "Device is offline, skipping."

// MsgNoDevices 设备清单为空时合成的结果消息
const MsgNoDevices = "No devices found in local database."

// VendorResponse 厂商设备协议的统一响应体
type VendorResponse struct {
	Result  int    `json:"result"`
	Message string `json:"message"`
}

// SyncResult 单台设备的下发结果，扇出聚合的基本单元
type SyncResult struct {
	Device  string          `json:"device,omitempty"`
	Result  int             `json:"result"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

// Succeeded 厂商成功
func (r SyncResult) Succeeded() bool {
	return r.Result == ResultOK
}

// AnySuccess 聚合结果中至少有一台设备成功
func AnySuccess(results []SyncResult) bool {
	for _, r := range results {
		if r.Succeeded() {
			return true
		}
	}
	return false
}
