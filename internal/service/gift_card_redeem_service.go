package service

import (
	"time"

	"github.com/bookwell-commerce/internal/constants"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"
)

// RedeemService 礼品卡核销服务
type RedeemService struct {
	cardRepo  repository.GiftCardRepository
	ledgerSvc *LedgerService
}

// RedeemInput 核销输入
type RedeemInput struct {
	TenantID    uint
	Code        string
	Amount      models.Money // 核销金额（分，正数）
	Channel     string       // pos/checkout
	Description string
	Actor       string
}

// NewRedeemService 创建核销服务
func NewRedeemService(cardRepo repository.GiftCardRepository, ledgerSvc *LedgerService) *RedeemService {
	return &RedeemService{cardRepo: cardRepo, ledgerSvc: ledgerSvc}
}

// Redeem 按卡号核销指定金额。
// 部分核销后卡片仍为 active；余额恰好扣到零转为 fully_redeemed。
func (s *RedeemService) Redeem(input RedeemInput) (*models.GiftCard, *models.LedgerEntry, error) {
	if s == nil || s.cardRepo == nil || s.ledgerSvc == nil {
		return nil, nil, ErrGiftCardNotFound
	}
	if input.Amount <= 0 {
		return nil, nil, ErrGiftCardInvalidAmount
	}
	card, err := s.cardRepo.GetByCode(input.TenantID, input.Code)
	if err != nil {
		return nil, nil, err
	}
	if card == nil {
		return nil, nil, ErrGiftCardNotFound
	}
	// 前置校验仅用于尽早返回友好错误；最终判定在加锁事务内复核
	switch card.Status {
	case models.GiftCardStatusVoided:
		return nil, nil, ErrGiftCardVoided
	case models.GiftCardStatusFullyRedeemed:
		return nil, nil, ErrGiftCardZeroBalance
	}
	if IsGiftCardExpired(card.ExpiresAt, time.Now()) {
		return nil, nil, ErrGiftCardExpired
	}

	channel := input.Channel
	if channel == "" {
		channel = constants.RedeemChannelPOS
	}
	return s.ledgerSvc.ApplyEntry(ApplyEntryInput{
		TenantID:    input.TenantID,
		GiftCardID:  card.ID,
		Amount:      -input.Amount,
		Kind:        constants.LedgerKindRedeem,
		Description: cleanDescription(input.Description, "礼品卡核销"),
		Actor:       input.Actor,
		Channel:     channel,
	})
}

// CheckBalance 按卡号查询余额与对外状态
func (s *RedeemService) CheckBalance(tenantID uint, code string) (*models.GiftCard, string, error) {
	card, err := s.cardRepo.GetByCode(tenantID, code)
	if err != nil {
		return nil, "", err
	}
	if card == nil {
		return nil, "", ErrGiftCardNotFound
	}
	return card, EffectiveGiftCardStatus(card, time.Now()), nil
}
