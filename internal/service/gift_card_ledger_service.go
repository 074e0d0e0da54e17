package service

import (
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/constants"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"

	"gorm.io/gorm"
)

// LedgerService 礼品卡账本服务：所有余额变动的唯一入口。
// 每次变动在单个事务内完成：加锁读卡 -> 校验 -> 更新余额与状态 -> 追加流水。
type LedgerService struct {
	cardRepo     repository.GiftCardRepository
	entryRepo    repository.LedgerEntryRepository
	retryBackoff time.Duration
}

// ApplyEntryInput 账本变动输入
type ApplyEntryInput struct {
	TenantID    uint
	GiftCardID  uint
	Amount      models.Money // 带符号金额（分）：发放为正，核销为负
	Kind        string       // issue/redeem/adjustment/void
	Description string
	Actor       string
	Channel     string
}

// NewLedgerService 创建账本服务。retryBackoff 为冲突重试前的等待时间，<=0 时取 20ms。
func NewLedgerService(cardRepo repository.GiftCardRepository, entryRepo repository.LedgerEntryRepository, retryBackoff time.Duration) *LedgerService {
	if retryBackoff <= 0 {
		retryBackoff = 20 * time.Millisecond
	}
	return &LedgerService{cardRepo: cardRepo, entryRepo: entryRepo, retryBackoff: retryBackoff}
}

// ApplyEntry 执行一次余额变动。
// 并发冲突（SQLite 锁忙、Postgres 死锁/序列化失败）重试一次后返回 ErrStorageConflict。
func (s *LedgerService) ApplyEntry(input ApplyEntryInput) (*models.GiftCard, *models.LedgerEntry, error) {
	if s == nil || s.cardRepo == nil || s.entryRepo == nil {
		return nil, nil, ErrGiftCardNotFound
	}
	var cardResult *models.GiftCard
	var entryResult *models.LedgerEntry
	run := func() error {
		return models.DB.Transaction(func(tx *gorm.DB) error {
			card, entry, err := s.ApplyEntryInTx(tx, input)
			if err != nil {
				return err
			}
			cardResult = card
			entryResult = entry
			return nil
		})
	}
	err := run()
	if err != nil && isRetryableConflict(err) {
		time.Sleep(s.retryBackoff)
		err = run()
		if err != nil && isRetryableConflict(err) {
			return nil, nil, ErrStorageConflict
		}
	}
	if err != nil {
		return nil, nil, err
	}
	return cardResult, entryResult, nil
}

// ApplyEntryInTx 在已有事务内执行余额变动（供发放、批量导入组合使用）
func (s *LedgerService) ApplyEntryInTx(tx *gorm.DB, input ApplyEntryInput) (*models.GiftCard, *models.LedgerEntry, error) {
	if tx == nil {
		return nil, nil, ErrStorageConflict
	}
	// 作废允许零金额流水（余额已为零的卡仍需留下作废记录）
	if input.Amount == 0 && input.Kind != constants.LedgerKindVoid {
		return nil, nil, ErrGiftCardInvalidAmount
	}
	now := time.Now()
	cardRepo := s.cardRepo.WithTx(tx)
	entryRepo := s.entryRepo.WithTx(tx)

	card, err := cardRepo.GetByIDForUpdate(input.TenantID, input.GiftCardID)
	if err != nil {
		return nil, nil, err
	}
	if card == nil {
		return nil, nil, ErrGiftCardNotFound
	}
	if card.Status == models.GiftCardStatusVoided {
		return nil, nil, ErrGiftCardVoided
	}
	if input.Kind == constants.LedgerKindRedeem && IsGiftCardExpired(card.ExpiresAt, now) {
		return nil, nil, ErrGiftCardExpired
	}

	before := card.CurrentBalance
	after := before + input.Amount
	if after < 0 {
		if before == 0 {
			return nil, nil, ErrGiftCardZeroBalance
		}
		return nil, nil, ErrGiftCardInsufficientBalance
	}
	// 发放本身建立上限，其余类型不得超过原始面额
	if input.Kind != constants.LedgerKindIssue && after > card.OriginalValue {
		return nil, nil, ErrGiftCardBalanceExceeded
	}

	card.CurrentBalance = after
	switch input.Kind {
	case constants.LedgerKindRedeem:
		if after == 0 {
			card.Status = models.GiftCardStatusFullyRedeemed
		}
	case constants.LedgerKindVoid:
		card.Status = models.GiftCardStatusVoided
	case constants.LedgerKindAdjustment:
		if after > 0 && card.Status == models.GiftCardStatusFullyRedeemed {
			card.Status = models.GiftCardStatusActive
		}
	}
	card.UpdatedAt = now
	if err := cardRepo.Update(card); err != nil {
		return nil, nil, err
	}

	entry := &models.LedgerEntry{
		TenantID:      card.TenantID,
		GiftCardID:    card.ID,
		Kind:          input.Kind,
		Amount:        input.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   strings.TrimSpace(input.Description),
		Actor:         strings.TrimSpace(input.Actor),
		Channel:       strings.TrimSpace(input.Channel),
		CreatedAt:     now,
	}
	if err := entryRepo.Create(entry); err != nil {
		return nil, nil, err
	}
	return card, entry, nil
}

// ListEntries 查询某张卡的全部流水
func (s *LedgerService) ListEntries(tenantID uint, giftCardID uint) ([]models.LedgerEntry, error) {
	card, err := s.cardRepo.GetByID(tenantID, giftCardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return s.entryRepo.ListByCard(tenantID, giftCardID)
}

// VerifyBalance 对账：校验流水累计与当前余额一致
func (s *LedgerService) VerifyBalance(tenantID uint, giftCardID uint) (bool, models.Money, error) {
	card, err := s.cardRepo.GetByID(tenantID, giftCardID)
	if err != nil {
		return false, 0, err
	}
	if card == nil {
		return false, 0, ErrGiftCardNotFound
	}
	sum, err := s.entryRepo.SumByCard(tenantID, giftCardID)
	if err != nil {
		return false, 0, err
	}
	return sum == card.CurrentBalance, sum, nil
}

// isRetryableConflict 判断错误是否为可重试的并发冲突
func isRetryableConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access")
}
