package code

import "net/http"

// messages 错误码对应的默认消息
var messages = map[int]string{
	ErrSuccess:      "成功",
	ErrUnknown:      "服务器内部错误",
	ErrBind:         "请求参数绑定错误",
	ErrValidation:   "请求参数验证错误",
	ErrTokenInvalid: "令牌无效",

	ErrUserNotFound:         "用户不存在",
	ErrUserAlreadyExist:     "用户已存在",
	ErrUserIdentityRequired: "缺少用户标识",

	ErrDeviceNotFound:     "设备不存在",
	ErrDeviceAlreadyExist: "设备已存在",
	ErrDeviceOffline:      "设备离线",

	ErrAreaNotFound: "区域不存在",

	ErrUpstreamAuth:  "上游认证失败",
	ErrUpstreamFetch: "上游数据拉取失败",
	ErrSyncFailed:    "同步任务失败",

	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",
}

// statuses 错误码对应的HTTP状态码
var statuses = map[int]int{
	ErrSuccess:      StatusOK,
	ErrUnknown:      StatusInternalServerError,
	ErrBind:         StatusBadRequest,
	ErrValidation:   StatusBadRequest,
	ErrTokenInvalid: StatusUnauthorized,

	ErrUserNotFound:         StatusNotFound,
	ErrUserAlreadyExist:     StatusBadRequest,
	ErrUserIdentityRequired: StatusBadRequest,

	ErrDeviceNotFound:     StatusNotFound,
	ErrDeviceAlreadyExist: StatusBadRequest,
	ErrDeviceOffline:      StatusBadRequest,

	ErrAreaNotFound: StatusNotFound,

	ErrUpstreamAuth:  StatusInternalServerError,
	ErrUpstreamFetch: StatusInternalServerError,
	ErrSyncFailed:    StatusInternalServerError,

	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(errorCode int) string {
	if msg, ok := messages[errorCode]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(errorCode int) int {
	if status, ok := statuses[errorCode]; ok {
		return status
	}
	return http.StatusInternalServerError
}
