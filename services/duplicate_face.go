package services

import "regexp"

// 设备上报的人脸重复消息示例：
//   "添加失败，与123456789012,1照片重复"
// 消息正文中嵌着冲突身份的idno。该匹配依赖厂商固件的消息文案，
// 固件升级改动文案时只需要更新这里。
var duplicateFaceRe = regexp.MustCompile(`与(\d+),\d+照片重复`)

// 厂商在人脸重复时返回的结果码
const duplicateFaceResult = 1

// ParseDuplicateFace 从单台设备的下发结果中识别人脸重复信号，
// 命中时返回冲突的身份标识。
func ParseDuplicateFace(result int, message string) (string, bool) {
	if result != duplicateFaceResult {
		return "", false
	}
	m := duplicateFaceRe.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[1], true
}
