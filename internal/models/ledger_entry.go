package models

import (
	"time"
)

// LedgerEntry 礼品卡账本流水（只增不改）
type LedgerEntry struct {
	ID            uint      `gorm:"primarykey" json:"id"`                          // 主键
	TenantID      uint      `gorm:"index;not null" json:"tenant_id"`               // 所属商户ID
	GiftCardID    uint      `gorm:"index;not null" json:"gift_card_id"`            // 礼品卡ID
	Kind          string    `gorm:"type:varchar(24);index;not null" json:"kind"`   // 类型（issue/redeem/adjustment/void）
	Amount        Money     `gorm:"not null" json:"amount"`                        // 变动金额（分，带符号）
	BalanceBefore Money     `gorm:"not null" json:"balance_before"`                // 变动前余额（分）
	BalanceAfter  Money     `gorm:"not null" json:"balance_after"`                 // 变动后余额（分）
	Description   string    `gorm:"type:varchar(255)" json:"description"`          // 备注
	Actor         string    `gorm:"type:varchar(120)" json:"actor"`                // 操作者标识
	Channel       string    `gorm:"type:varchar(24)" json:"channel,omitempty"`     // 核销渠道（pos/checkout）
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                       // 创建时间
	GiftCard      *GiftCard `gorm:"foreignKey:GiftCardID" json:"-"`                // 卡片信息
}

// TableName 指定表名
func (LedgerEntry) TableName() string {
	return "gift_card_ledger_entries"
}
