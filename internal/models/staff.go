package models

import (
	"time"
)

const (
	StaffStatusActive   = "active"
	StaffStatusDisabled = "disabled"
)

// Staff 商户员工（后台登录账号）
type Staff struct {
	ID        uint       `gorm:"primarykey" json:"id"`                                                         // 主键
	TenantID  uint       `gorm:"uniqueIndex:idx_staff_tenant_email;index;not null" json:"tenant_id"`           // 所属商户ID
	Email     string     `gorm:"type:varchar(190);uniqueIndex:idx_staff_tenant_email;not null" json:"email"`   // 登录邮箱
	Name      string     `gorm:"type:varchar(120);not null" json:"name"`                                       // 姓名
	Password  string     `gorm:"type:varchar(255);not null" json:"-"`                                          // 密码哈希
	Status    string     `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"`               // 状态
	LastLogin *time.Time `json:"last_login,omitempty"`                                                         // 最后登录时间
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                                                      // 创建时间
	UpdatedAt time.Time  `gorm:"index" json:"updated_at"`                                                      // 更新时间
	Tenant    *Tenant    `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`                                  // 商户信息
}

// TableName 指定表名
func (Staff) TableName() string {
	return "staff"
}
