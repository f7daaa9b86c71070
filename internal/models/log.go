package models

import "time"

// AuditLog records mutating requests made by authenticated users.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"userId"`
	Method    string    `gorm:"size:16" json:"method"`
	Path      string    `gorm:"size:255;index" json:"path"`
	Action    string    `gorm:"size:2048" json:"action"` // method + path + request body summary
	Status    int       `json:"status"`
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `gorm:"size:255" json:"userAgent"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
