package models

import (
	"time"
)

const (
	TenantStatusActive   = "active"
	TenantStatusDisabled = "disabled"
)

// Tenant 商户（租户）
type Tenant struct {
	ID                uint      `gorm:"primarykey" json:"id"`                                           // 主键
	Name              string    `gorm:"type:varchar(120);not null" json:"name"`                         // 商户名称
	Slug              string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`              // 商户标识
	Currency          string    `gorm:"type:varchar(16);not null;default:'USD'" json:"currency"`        // 币种
	Status            string    `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"` // 状态
	DefaultExpiryDays *int      `json:"default_expiry_days,omitempty"`                                  // 默认有效天数（nil 表示永不过期）
	APIKeyHash        string    `gorm:"type:varchar(255)" json:"-"`                                     // API 密钥哈希
	NotifyURL         string    `gorm:"type:varchar(512)" json:"notify_url,omitempty"`                  // 发放通知回调地址
	CreatedAt         time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt         time.Time `gorm:"index" json:"updated_at"`                                        // 更新时间
}

// TableName 指定表名
func (Tenant) TableName() string {
	return "tenants"
}
