package models

// UserStatus represents the lifecycle status of a roster entry
type UserStatus string

const (
	UserStatusUnpaid  UserStatus = "Unpaid"
	UserStatusPaid    UserStatus = "Paid"
	UserStatusExpired UserStatus = "Expired"
)

// User represents a whitelist roster entry. ID doubles as the idno/icno
// key pushed to devices and must stay stable once assigned.
type User struct {
	ID             string `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Name           string `gorm:"type:varchar(100)" json:"name"`
	Email          string `gorm:"type:varchar(100)" json:"email"`
	Role           string `gorm:"type:varchar(20)" json:"role"`
	Area           string `gorm:"type:varchar(50)" json:"area"`
	Status         string `gorm:"type:varchar(20)" json:"status"`
	Photo          string `gorm:"type:varchar(255)" json:"photo"`
	OrderDetailID  int    `json:"order_detail_id"`
	OrderID        string `gorm:"type:varchar(50)" json:"order_id"`
	StartDate      string `gorm:"type:varchar(30)" json:"start_date"`
	ExpiredDateIn  string `gorm:"type:varchar(30)" json:"expired_date_in"`
	ExpiredDateOut string `gorm:"type:varchar(30)" json:"expired_date_out"`

	// Base64 携带用于下发设备的人脸图片，不落库
	Base64 string `gorm:"-" json:"base64,omitempty"`
}

// MergeUser 合并更新：只有传入的非空字段覆盖已有记录，空字段保留原值。
// ID不参与合并。
func MergeUser(existing, incoming *User) *User {
	merged := *existing

	if incoming.Name != "" {
		merged.Name = incoming.Name
	}
	if incoming.Email != "" {
		merged.Email = incoming.Email
	}
	if incoming.Role != "" {
		merged.Role = incoming.Role
	}
	if incoming.Area != "" {
		merged.Area = incoming.Area
	}
	if incoming.Status != "" {
		merged.Status = incoming.Status
	}
	if incoming.Photo != "" {
		merged.Photo = incoming.Photo
	}
	if incoming.OrderDetailID != 0 {
		merged.OrderDetailID = incoming.OrderDetailID
	}
	if incoming.OrderID != "" {
		merged.OrderID = incoming.OrderID
	}
	if incoming.StartDate != "" {
		merged.StartDate = incoming.StartDate
	}
	if incoming.ExpiredDateIn != "" {
		merged.ExpiredDateIn = incoming.ExpiredDateIn
	}
	if incoming.ExpiredDateOut != "" {
		merged.ExpiredDateOut = incoming.ExpiredDateOut
	}
	if incoming.Base64 != "" {
		merged.Base64 = incoming.Base64
	}

	return &merged
}
