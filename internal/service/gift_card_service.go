package service

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/constants"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"

	"gorm.io/gorm"
)

// GiftCardService 礼品卡管理服务（查询、元数据维护、作废、调整、导出）
type GiftCardService struct {
	cardRepo  repository.GiftCardRepository
	ledgerSvc *LedgerService
}

// GiftCardView 对外展示的卡片视图（状态为实时推导值）
type GiftCardView struct {
	Card   *models.GiftCard
	Status string
}

// UpdateMetadataInput 元数据更新输入（仅购买人信息，余额与状态不可直改）
type UpdateMetadataInput struct {
	TenantID          uint
	GiftCardID        uint
	PurchasedForEmail *string
	PurchasedByEmail  *string
	PurchasedByName   *string
}

// AdjustInput 人工余额调整输入
type AdjustInput struct {
	TenantID    uint
	GiftCardID  uint
	Delta       models.Money // 带符号（分）
	Description string
	Actor       string
}

// NewGiftCardService 创建礼品卡管理服务
func NewGiftCardService(cardRepo repository.GiftCardRepository, ledgerSvc *LedgerService) *GiftCardService {
	return &GiftCardService{cardRepo: cardRepo, ledgerSvc: ledgerSvc}
}

// GetByCode 按卡号查询卡片
func (s *GiftCardService) GetByCode(tenantID uint, code string) (*GiftCardView, error) {
	card, err := s.cardRepo.GetByCode(tenantID, code)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return &GiftCardView{Card: card, Status: EffectiveGiftCardStatus(card, time.Now())}, nil
}

// GetByPublicID 按对外 UUID 查询卡片
func (s *GiftCardService) GetByPublicID(tenantID uint, publicID string) (*GiftCardView, error) {
	card, err := s.cardRepo.GetByPublicID(tenantID, publicID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return &GiftCardView{Card: card, Status: EffectiveGiftCardStatus(card, time.Now())}, nil
}

// List 查询卡片列表
func (s *GiftCardService) List(filter repository.GiftCardListFilter) ([]GiftCardView, int64, error) {
	cards, total, err := s.cardRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now()
	views := make([]GiftCardView, 0, len(cards))
	for i := range cards {
		views = append(views, GiftCardView{
			Card:   &cards[i],
			Status: EffectiveGiftCardStatus(&cards[i], now),
		})
	}
	return views, total, nil
}

// ListLedger 查询卡片流水
func (s *GiftCardService) ListLedger(tenantID, giftCardID uint) ([]models.LedgerEntry, error) {
	return s.ledgerSvc.ListEntries(tenantID, giftCardID)
}

// UpdateMetadata 更新购买人元数据
func (s *GiftCardService) UpdateMetadata(input UpdateMetadataInput) (*models.GiftCard, error) {
	card, err := s.cardRepo.GetByID(input.TenantID, input.GiftCardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	if input.PurchasedForEmail != nil {
		card.PurchasedForEmail = normalizeOptionalString(input.PurchasedForEmail)
	}
	if input.PurchasedByEmail != nil {
		card.PurchasedByEmail = normalizeOptionalString(input.PurchasedByEmail)
	}
	if input.PurchasedByName != nil {
		card.PurchasedByName = normalizeOptionalString(input.PurchasedByName)
	}
	card.UpdatedAt = time.Now()
	if err := s.cardRepo.Update(card); err != nil {
		return nil, err
	}
	return card, nil
}

// Void 作废卡片：追加一笔冲销流水把余额清零并置为 voided。
// 作废后的卡不可再核销、不可恢复。
func (s *GiftCardService) Void(tenantID, giftCardID uint, description, actor string) (*models.GiftCard, *models.LedgerEntry, error) {
	var cardResult *models.GiftCard
	var entryResult *models.LedgerEntry
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		card, err := s.cardRepo.WithTx(tx).GetByIDForUpdate(tenantID, giftCardID)
		if err != nil {
			return err
		}
		if card == nil {
			return ErrGiftCardNotFound
		}
		if card.Status == models.GiftCardStatusVoided {
			return ErrGiftCardVoided
		}
		cardResult, entryResult, err = s.ledgerSvc.ApplyEntryInTx(tx, ApplyEntryInput{
			TenantID:    tenantID,
			GiftCardID:  giftCardID,
			Amount:      -card.CurrentBalance,
			Kind:        constants.LedgerKindVoid,
			Description: cleanDescription(description, "礼品卡作废"),
			Actor:       actor,
		})
		return err
	})
	if err != nil {
		if isRetryableConflict(err) {
			return nil, nil, ErrStorageConflict
		}
		return nil, nil, err
	}
	return cardResult, entryResult, nil
}

// Adjust 人工调整余额（带符号），用于客服补偿或纠错
func (s *GiftCardService) Adjust(input AdjustInput) (*models.GiftCard, *models.LedgerEntry, error) {
	if input.Delta == 0 {
		return nil, nil, ErrGiftCardInvalidAmount
	}
	return s.ledgerSvc.ApplyEntry(ApplyEntryInput{
		TenantID:    input.TenantID,
		GiftCardID:  input.GiftCardID,
		Amount:      input.Delta,
		Kind:        constants.LedgerKindAdjustment,
		Description: cleanDescription(input.Description, "人工余额调整"),
		Actor:       input.Actor,
	})
}

// Export 导出卡片列表，format 支持 csv（默认）与 txt（仅卡号）
func (s *GiftCardService) Export(filter repository.GiftCardListFilter, format string) ([]byte, string, error) {
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "txt" {
		return nil, "", ErrGiftCardInvalidValue
	}
	filter.Page = 0
	filter.PageSize = 0
	views, _, err := s.List(filter)
	if err != nil {
		return nil, "", err
	}

	// txt 仅导出卡号，一行一个
	if format == "txt" {
		lines := make([]string, 0, len(views))
		for _, v := range views {
			lines = append(lines, v.Card.Code)
		}
		return []byte(strings.Join(lines, "\n")), "text/plain; charset=utf-8", nil
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{"code", "status", "original_value", "current_balance", "expires_at", "purchased_at", "purchased_for_email"}
	if err := writer.Write(header); err != nil {
		return nil, "", err
	}
	for _, v := range views {
		expires := ""
		if v.Card.ExpiresAt != nil {
			expires = v.Card.ExpiresAt.UTC().Format(time.RFC3339)
		}
		forEmail := ""
		if v.Card.PurchasedForEmail != nil {
			forEmail = *v.Card.PurchasedForEmail
		}
		record := []string{
			v.Card.Code,
			v.Status,
			v.Card.OriginalValue.String(),
			v.Card.CurrentBalance.String(),
			expires,
			v.Card.PurchasedAt.UTC().Format(time.RFC3339),
			forEmail,
		}
		if err := writer.Write(record); err != nil {
			return nil, "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "text/csv; charset=utf-8", nil
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
