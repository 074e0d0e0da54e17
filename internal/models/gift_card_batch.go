package models

import (
	"time"
)

// GiftCardBatch 礼品卡导入批次（审计记录）
type GiftCardBatch struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                  // 主键
	TenantID     uint       `gorm:"index;not null" json:"tenant_id"`                       // 所属商户ID
	BatchNo      string     `gorm:"type:varchar(48);uniqueIndex;not null" json:"batch_no"` // 批次号
	Source       string     `gorm:"type:varchar(120)" json:"source"`                       // 来源描述（如迁移系统名称）
	TotalRows    int        `gorm:"not null;default:0" json:"total_rows"`                  // 提交行数
	ImportedRows int        `gorm:"not null;default:0" json:"imported_rows"`               // 成功行数
	FailedRows   int        `gorm:"not null;default:0" json:"failed_rows"`                 // 失败行数
	CreatedBy    *uint      `gorm:"index" json:"created_by,omitempty"`                     // 操作员工ID
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt    time.Time  `gorm:"index" json:"updated_at"`                               // 更新时间
	Cards        []GiftCard `gorm:"foreignKey:BatchID" json:"cards,omitempty"`             // 批次卡片
}

// TableName 指定表名
func (GiftCardBatch) TableName() string {
	return "gift_card_batches"
}
