package utils

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// RandomInt32 生成一个安全的随机32位整数
func RandomInt32() int32 {
	var num int32
	err := binary.Read(rand.Reader, binary.BigEndian, &num)
	if err != nil {
		panic("generate random int32 failed")
	}

	return num
}

// GenerateUniqueID 生成12位本地用户标识：毫秒时间戳后6位 + 6位随机数。
// 只要求本地唯一，不需要与上游标识对应。
func GenerateUniqueID() string {
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	timestampPart := millis[len(millis)-6:]

	n := uint32(RandomInt32())
	randomPart := fmt.Sprintf("%06d", n%1000000)

	return timestampPart + randomPart
}

// FormatDeviceTime 按设备协议要求格式化时间
func FormatDeviceTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
