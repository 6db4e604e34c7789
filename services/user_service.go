package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
)

// 数据库写入操作类型
const (
	OperationInsert = "INSERT"
	OperationUpdate = "UPDATE"
)

// InterfaceUserService defines the user roster service interface
type InterfaceUserService interface {
	GetAllUsers() ([]models.User, error)
	GetUserByID(id string) (*models.User, error)
	SaveUser(user *models.User) (string, error)
	UpdateUserStatus(id string, status string) error
	ReassignUserID(oldID, newID string) error
	DeleteUser(id string) (*models.User, error)
	BulkDeleteUsers(ids []string) (int64, []string, error)
}

// UserService 提供本地用户名册相关的服务
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService 创建一个新的用户名册服务
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// GetAllUsers 获取所有用户列表
func (s *UserService) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserByID 根据ID获取用户
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("用户不存在")
		}
		return nil, err
	}
	return &user, nil
}

// SaveUser 插入或合并用户记录。同ID已存在时按合并规则更新：传入的
// 非空字段覆盖，空字段保留。返回实际执行的操作类型。
func (s *UserService) SaveUser(user *models.User) (string, error) {
	var existing models.User
	err := s.DB.First(&existing, "id = ?", user.ID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.DB.Create(user).Error; err != nil {
			return "", err
		}
		return OperationInsert, nil
	}
	if err != nil {
		return "", err
	}

	merged := models.MergeUser(&existing, user)
	if err := s.DB.Save(merged).Error; err != nil {
		return "", err
	}
	*user = *merged
	return OperationUpdate, nil
}

// UpdateUserStatus 更新用户生命周期状态
func (s *UserService) UpdateUserStatus(id string, status string) error {
	return s.DB.Model(&models.User{}).Where("id = ?", id).Update("status", status).Error
}

// ReassignUserID 把用户改绑到新标识，用于人脸重复重试成功后把设备侧
// 实际登记的身份持久化回名册。新标识已存在时合并进已有记录并删除旧记录。
func (s *UserService) ReassignUserID(oldID, newID string) error {
	if oldID == newID {
		return nil
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var old models.User
		if err := tx.First(&old, "id = ?", oldID).Error; err != nil {
			return err
		}

		var target models.User
		err := tx.First(&target, "id = ?", newID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 直接改主键
			if err := tx.Model(&models.User{}).Where("id = ?", oldID).Update("id", newID).Error; err != nil {
				return err
			}
			return nil
		}
		if err != nil {
			return err
		}

		old.ID = newID
		merged := models.MergeUser(&target, &old)
		if err := tx.Save(merged).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", oldID).Error
	})
}

// DeleteUser 删除用户并返回被删除的记录，供调用方清理照片和设备白名单
func (s *UserService) DeleteUser(id string) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Delete(&models.User{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BulkDeleteUsers 批量删除用户，返回删除行数和待清理的照片路径
func (s *UserService) BulkDeleteUsers(ids []string) (int64, []string, error) {
	if len(ids) == 0 {
		return 0, nil, nil
	}

	var users []models.User
	if err := s.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return 0, nil, err
	}

	var photos []string
	for _, u := range users {
		if u.Photo != "" {
			photos = append(photos, u.Photo)
		}
	}

	result := s.DB.Where("id IN ?", ids).Delete(&models.User{})
	if result.Error != nil {
		return 0, nil, result.Error
	}
	return result.RowsAffected, photos, nil
}
