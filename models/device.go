package models

// DeviceStatus represents the status of a turnstile device
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
)

// Device represents a networked turnstile/face-recognition terminal
type Device struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	Name     string       `gorm:"type:varchar(50);not null" json:"name"`
	IP       string       `gorm:"type:varchar(45);unique;not null" json:"ip"`
	Area     string       `gorm:"type:varchar(50)" json:"area"`
	Status   DeviceStatus `gorm:"type:varchar(20);default:'offline'" json:"status"`
	LastSeen string       `gorm:"type:varchar(30)" json:"lastSeen"`
}
