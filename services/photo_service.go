package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/website-f/gate/config"
)

// InterfacePhotoService 定义照片存储服务接口
type InterfacePhotoService interface {
	SavePhoto(id string, photoBase64 string) (string, error)
	DeletePhoto(relativePath string) error
	LoadBase64(relativePath string) (string, error)
}

// PhotoService 管理本地照片文件存储
type PhotoService struct {
	Config *config.Config
}

// NewPhotoService 创建一个新的照片存储服务
func NewPhotoService(cfg *config.Config) InterfacePhotoService {
	return &PhotoService{Config: cfg}
}

// 去掉data URI前缀，设备协议和文件存储都只要纯base64
var dataURIPrefixRe = regexp.MustCompile(`^data:image/\w+;base64,`)

// CleanBase64 去掉base64图片数据的data URI前缀
func CleanBase64(photoBase64 string) string {
	return dataURIPrefixRe.ReplaceAllString(photoBase64, "")
}

// SavePhoto 把base64图片落盘，文件名由标识加毫秒时间戳组成以防碰撞，
// 返回相对路径。
func (s *PhotoService) SavePhoto(id string, photoBase64 string) (string, error) {
	cleaned := CleanBase64(photoBase64)
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", fmt.Errorf("解码图片数据失败: %v", err)
	}

	if err := os.MkdirAll(s.Config.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("创建照片目录失败: %v", err)
	}

	fileName := fmt.Sprintf("%s_%d.jpg", id, time.Now().UnixMilli())
	fullPath := filepath.Join(s.Config.UploadDir, fileName)
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("写入照片文件失败: %v", err)
	}

	return fullPath, nil
}

// DeletePhoto 删除照片文件，文件不存在不算错误
func (s *PhotoService) DeletePhoto(relativePath string) error {
	if relativePath == "" {
		return nil
	}
	if _, err := os.Stat(relativePath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(relativePath)
}

// LoadBase64 读取照片文件并编码为base64，用于把已入库用户重新下发设备
func (s *PhotoService) LoadBase64(relativePath string) (string, error) {
	data, err := os.ReadFile(relativePath)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
