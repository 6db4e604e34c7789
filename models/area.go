package models

// Area represents a logical access zone referenced by users and devices.
// 区域与用户/设备之间不做外键约束，由界面层自行解析。
type Area struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(50);not null" json:"name"`
	Description string `gorm:"type:varchar(255)" json:"description"`
	AccessLevel string `gorm:"type:varchar(20)" json:"accessLevel"`
}
