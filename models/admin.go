package models

import (
	"time"

	"github.com/website-f/gate/utils"
)

// Admin represents a system administrator account
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(50);unique;not null" json:"username"`
	Password  string    `gorm:"type:varchar(100);not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckPassword 比较密码和哈希值
func (a *Admin) CheckPassword(password string) bool {
	return utils.CheckPasswordHash(password, a.Password)
}
