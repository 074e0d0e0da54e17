package models

import (
	"time"
)

const (
	GiftCardStatusActive        = "active"
	GiftCardStatusFullyRedeemed = "fully_redeemed"
	GiftCardStatusVoided        = "voided"

	// GiftCardStatusExpired 派生状态：不入库，由 expires_at 与当前时间推导。
	GiftCardStatusExpired = "expired"
)

// GiftCard 礼品卡
type GiftCard struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                                          // 主键
	PublicID          string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`                        // 对外 UUID
	TenantID          uint           `gorm:"uniqueIndex:idx_gift_cards_tenant_code;uniqueIndex:idx_gift_cards_tenant_idem;index;not null" json:"tenant_id"` // 所属商户ID
	Code              string         `gorm:"type:varchar(80);uniqueIndex:idx_gift_cards_tenant_code;not null" json:"code"`  // 卡号
	BatchID           *uint          `gorm:"index" json:"batch_id,omitempty"`                                               // 导入批次ID
	OriginalValue     Money          `gorm:"not null" json:"original_value"`                                                // 原始面额（分）
	CurrentBalance    Money          `gorm:"not null" json:"current_balance"`                                               // 当前余额（分）
	Status            string         `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"`                // 持久化状态
	ExpiresAt         *time.Time     `gorm:"index" json:"expires_at"`                                                       // 过期时间（nil 表示永不过期）
	PurchasedAt       time.Time      `gorm:"index;not null" json:"purchased_at"`                                            // 购买/发放时间
	PurchasedForEmail *string        `gorm:"type:varchar(190)" json:"purchased_for_email,omitempty"`                        // 受赠人邮箱
	PurchasedByEmail  *string        `gorm:"type:varchar(190)" json:"purchased_by_email,omitempty"`                         // 购买人邮箱
	PurchasedByName   *string        `gorm:"type:varchar(120)" json:"purchased_by_name,omitempty"`                          // 购买人姓名
	IdempotencyKey    *string        `gorm:"type:varchar(190);uniqueIndex:idx_gift_cards_tenant_idem" json:"-"`             // 幂等键（商户内唯一，NULL 不参与约束）
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                                       // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                                       // 更新时间
	Batch             *GiftCardBatch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`                                     // 批次信息
}

// TableName 指定表名
func (GiftCard) TableName() string {
	return "gift_cards"
}
