package service

import (
	"time"

	"github.com/bookwell-commerce/internal/models"
)

// ComputeGiftCardExpiry 根据发放时间与有效天数计算过期时间。
// days 为 nil 或 <=0 表示永不过期；结果统一为 UTC。
func ComputeGiftCardExpiry(issuedAt time.Time, days *int) *time.Time {
	if days == nil || *days <= 0 {
		return nil
	}
	expires := issuedAt.UTC().AddDate(0, 0, *days)
	return &expires
}

// IsGiftCardExpired 判断过期时间是否已到。nil 表示永不过期。
func IsGiftCardExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return !expiresAt.After(now)
}

// EffectiveGiftCardStatus 推导卡片的对外状态。
// 入库状态只有 active/fully_redeemed/voided，expired 由过期时间实时推导；
// voided 与 fully_redeemed 优先于过期判断。
func EffectiveGiftCardStatus(card *models.GiftCard, now time.Time) string {
	if card == nil {
		return ""
	}
	switch card.Status {
	case models.GiftCardStatusVoided:
		return models.GiftCardStatusVoided
	case models.GiftCardStatusFullyRedeemed:
		return models.GiftCardStatusFullyRedeemed
	}
	if IsGiftCardExpired(card.ExpiresAt, now) {
		return models.GiftCardStatusExpired
	}
	return models.GiftCardStatusActive
}
