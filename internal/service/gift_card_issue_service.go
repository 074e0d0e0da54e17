package service

import (
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/constants"
	"github.com/bookwell-commerce/internal/logger"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryEnqueuer 发放通知入队接口
type DeliveryEnqueuer interface {
	EnqueueGiftCardDelivery(tenantID, giftCardID uint) error
}

// IssueService 礼品卡发放服务
type IssueService struct {
	cardRepo   repository.GiftCardRepository
	tenantRepo repository.TenantRepository
	ledgerSvc  *LedgerService
	codeGen    *CodeGenerator
	enqueuer   DeliveryEnqueuer
}

// IssueInput 发放输入
type IssueInput struct {
	TenantID          uint
	Value             models.Money
	Code              string // 指定卡号（空则自动生成）
	ExpiryDays        *int   // 覆盖商户默认有效天数（nil 表示沿用商户配置）
	BatchID           *uint
	PurchasedAt       *time.Time
	PurchasedForEmail *string
	PurchasedByEmail  *string
	PurchasedByName   *string
	IdempotencyKey    string
	Description       string
	Actor             string
}

// NewIssueService 创建发放服务
func NewIssueService(
	cardRepo repository.GiftCardRepository,
	tenantRepo repository.TenantRepository,
	ledgerSvc *LedgerService,
	codeGen *CodeGenerator,
	enqueuer DeliveryEnqueuer,
) *IssueService {
	return &IssueService{
		cardRepo:   cardRepo,
		tenantRepo: tenantRepo,
		ledgerSvc:  ledgerSvc,
		codeGen:    codeGen,
		enqueuer:   enqueuer,
	}
}

// Issue 发放一张礼品卡。
// 幂等键重复提交时直接返回首次创建的卡片，不产生新流水。
func (s *IssueService) Issue(input IssueInput) (*models.GiftCard, error) {
	if s == nil || s.cardRepo == nil || s.ledgerSvc == nil {
		return nil, ErrGiftCardNotFound
	}
	if input.Value <= 0 {
		return nil, ErrGiftCardInvalidValue
	}
	tenant, err := s.tenantRepo.GetByID(input.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	if tenant.Status != models.TenantStatusActive {
		return nil, ErrTenantDisabled
	}

	idemKey := strings.TrimSpace(input.IdempotencyKey)
	if idemKey != "" {
		existing, err := s.cardRepo.GetByIdempotencyKey(input.TenantID, idemKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	code := repository.NormalizeGiftCardCode(input.Code)
	if code != "" {
		existing, err := s.cardRepo.GetByCode(input.TenantID, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrGiftCardDuplicateCode
		}
	} else {
		code, err = s.codeGen.NextCode(input.TenantID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	purchasedAt := now
	if input.PurchasedAt != nil && !input.PurchasedAt.IsZero() {
		purchasedAt = *input.PurchasedAt
	}
	expiryDays := tenant.DefaultExpiryDays
	if input.ExpiryDays != nil {
		expiryDays = input.ExpiryDays
	}
	expiresAt := ComputeGiftCardExpiry(purchasedAt, expiryDays)

	card := &models.GiftCard{
		PublicID:          uuid.NewString(),
		TenantID:          input.TenantID,
		Code:              code,
		BatchID:           input.BatchID,
		OriginalValue:     input.Value,
		CurrentBalance:    0,
		Status:            models.GiftCardStatusActive,
		ExpiresAt:         expiresAt,
		PurchasedAt:       purchasedAt.UTC(),
		PurchasedForEmail: input.PurchasedForEmail,
		PurchasedByEmail:  input.PurchasedByEmail,
		PurchasedByName:   input.PurchasedByName,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if idemKey != "" {
		card.IdempotencyKey = &idemKey
	}

	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.cardRepo.WithTx(tx).Create(card); err != nil {
			return err
		}
		applied, _, err := s.ledgerSvc.ApplyEntryInTx(tx, ApplyEntryInput{
			TenantID:    input.TenantID,
			GiftCardID:  card.ID,
			Amount:      input.Value,
			Kind:        constants.LedgerKindIssue,
			Description: cleanDescription(input.Description, "礼品卡发放"),
			Actor:       input.Actor,
		})
		if err != nil {
			return err
		}
		card = applied
		return nil
	}); err != nil {
		// 并发重复提交落在唯一约束上：幂等键冲突回读首单，卡号冲突上报
		if isUniqueViolation(err) {
			if idemKey != "" {
				existing, queryErr := s.cardRepo.GetByIdempotencyKey(input.TenantID, idemKey)
				if queryErr == nil && existing != nil {
					return existing, nil
				}
			}
			return nil, ErrGiftCardDuplicateCode
		}
		return nil, err
	}

	s.notifyDelivery(tenant, card)
	return card, nil
}

func (s *IssueService) notifyDelivery(tenant *models.Tenant, card *models.GiftCard) {
	if s.enqueuer == nil || tenant == nil || card == nil {
		return
	}
	if strings.TrimSpace(tenant.NotifyURL) == "" {
		return
	}
	if err := s.enqueuer.EnqueueGiftCardDelivery(tenant.ID, card.ID); err != nil {
		logger.Warnw("gift_card_delivery_enqueue_failed",
			"tenant_id", tenant.ID,
			"gift_card_id", card.ID,
			"error", err,
		)
	}
}

// isUniqueViolation 判断错误是否为唯一约束冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed")
}

func cleanDescription(raw string, fallback string) string {
	desc := strings.TrimSpace(raw)
	if desc == "" {
		return fallback
	}
	return desc
}
