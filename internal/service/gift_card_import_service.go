package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/constants"
	"github.com/bookwell-commerce/internal/logger"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportService 礼品卡批量导入服务（从旧系统迁移存量卡）。
// 不复用发放服务：导入行的建卡、发放流水与消费冲抵必须在同一事务内落库，
// 且迁移存量卡不触发发放通知。
type ImportService struct {
	cardRepo   repository.GiftCardRepository
	batchRepo  repository.GiftCardBatchRepository
	tenantRepo repository.TenantRepository
	ledgerSvc  *LedgerService
	codeGen    *CodeGenerator
}

// ImportRow 导入行
type ImportRow struct {
	Code              string
	OriginalValue     models.Money
	CurrentBalance    models.Money
	ExpiresAt         *time.Time
	PurchasedAt       *time.Time
	PurchasedForEmail *string
	PurchasedByEmail  *string
	PurchasedByName   *string
}

// ImportRowResult 导入行结果
type ImportRowResult struct {
	Index      int    `json:"index"`
	Code       string `json:"code"`
	Imported   bool   `json:"imported"`
	GiftCardID uint   `json:"gift_card_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ImportInput 导入输入
type ImportInput struct {
	TenantID uint
	Source   string
	Rows     []ImportRow
	StaffID  *uint
	Actor    string
}

// ImportResult 导入结果
type ImportResult struct {
	Batch    *models.GiftCardBatch
	Rows     []ImportRowResult
	Imported int
	Failed   int
}

// NewImportService 创建导入服务
func NewImportService(
	cardRepo repository.GiftCardRepository,
	batchRepo repository.GiftCardBatchRepository,
	tenantRepo repository.TenantRepository,
	ledgerSvc *LedgerService,
	codeGen *CodeGenerator,
) *ImportService {
	return &ImportService{
		cardRepo:   cardRepo,
		batchRepo:  batchRepo,
		tenantRepo: tenantRepo,
		ledgerSvc:  ledgerSvc,
		codeGen:    codeGen,
	}
}

// Import 逐行导入存量礼品卡。
// 行与行互不影响：单行失败记入结果继续后续行。
// 每张卡写入发放流水，存量消费差额补一笔调整流水，保证流水累计等于当前余额。
func (s *ImportService) Import(input ImportInput) (*ImportResult, error) {
	if s == nil || s.cardRepo == nil || s.ledgerSvc == nil {
		return nil, ErrGiftCardNotFound
	}
	tenant, err := s.tenantRepo.GetByID(input.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	if len(input.Rows) == 0 {
		return nil, ErrGiftCardInvalidValue
	}
	if len(input.Rows) > constants.ImportBatchMaxRows {
		return nil, ErrGiftCardImportTooLarge
	}

	now := time.Now()
	batch := &models.GiftCardBatch{
		TenantID:  input.TenantID,
		BatchNo:   buildBatchNo(now),
		Source:    strings.TrimSpace(input.Source),
		TotalRows: len(input.Rows),
		CreatedBy: input.StaffID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.batchRepo.Create(batch); err != nil {
		return nil, err
	}

	// 批内卡号重复在写库前拒绝，首个出现的行保留
	seen := make(map[string]bool, len(input.Rows))
	duplicate := make(map[int]bool)
	for idx, row := range input.Rows {
		code := repository.NormalizeGiftCardCode(row.Code)
		if code == "" {
			continue
		}
		if seen[code] {
			duplicate[idx] = true
			continue
		}
		seen[code] = true
	}

	result := &ImportResult{Batch: batch, Rows: make([]ImportRowResult, 0, len(input.Rows))}
	for idx, row := range input.Rows {
		rowResult := ImportRowResult{Index: idx, Code: repository.NormalizeGiftCardCode(row.Code)}
		if duplicate[idx] {
			rowResult.Error = ErrGiftCardDuplicateCode.Error()
		} else if card, err := s.importRow(tenant, batch.ID, row, input.Actor); err != nil {
			rowResult.Error = err.Error()
		} else {
			rowResult.Imported = true
			rowResult.GiftCardID = card.ID
			rowResult.Code = card.Code
		}
		if rowResult.Imported {
			result.Imported++
		} else {
			result.Failed++
		}
		result.Rows = append(result.Rows, rowResult)
	}

	batch.ImportedRows = result.Imported
	batch.FailedRows = result.Failed
	batch.UpdatedAt = time.Now()
	if err := s.batchRepo.Update(batch); err != nil {
		logger.Warnw("gift_card_import_batch_update_failed", "batch_id", batch.ID, "error", err)
	}
	return result, nil
}

func (s *ImportService) importRow(tenant *models.Tenant, batchID uint, row ImportRow, actor string) (*models.GiftCard, error) {
	if row.OriginalValue <= 0 {
		return nil, ErrGiftCardInvalidValue
	}
	if row.CurrentBalance < 0 || row.CurrentBalance > row.OriginalValue {
		return nil, ErrGiftCardBalanceExceeded
	}
	code := repository.NormalizeGiftCardCode(row.Code)
	if code == "" {
		// 行未指定卡号时由生成器补发
		generated, err := s.codeGen.NextCode(tenant.ID)
		if err != nil {
			return nil, err
		}
		code = generated
	} else {
		existing, err := s.cardRepo.GetByCode(tenant.ID, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrGiftCardDuplicateCode
		}
	}

	now := time.Now()
	purchasedAt := now
	if row.PurchasedAt != nil && !row.PurchasedAt.IsZero() {
		purchasedAt = *row.PurchasedAt
	}
	expiresAt := row.ExpiresAt
	if expiresAt == nil {
		expiresAt = ComputeGiftCardExpiry(purchasedAt, tenant.DefaultExpiryDays)
	}
	card := &models.GiftCard{
		PublicID:          uuid.NewString(),
		TenantID:          tenant.ID,
		Code:              code,
		BatchID:           &batchID,
		OriginalValue:     row.OriginalValue,
		CurrentBalance:    0,
		Status:            models.GiftCardStatusActive,
		ExpiresAt:         expiresAt,
		PurchasedAt:       purchasedAt.UTC(),
		PurchasedForEmail: row.PurchasedForEmail,
		PurchasedByEmail:  row.PurchasedByEmail,
		PurchasedByName:   row.PurchasedByName,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.cardRepo.WithTx(tx).Create(card); err != nil {
			return err
		}
		applied, _, err := s.ledgerSvc.ApplyEntryInTx(tx, ApplyEntryInput{
			TenantID:    tenant.ID,
			GiftCardID:  card.ID,
			Amount:      row.OriginalValue,
			Kind:        constants.LedgerKindIssue,
			Description: "存量卡导入",
			Actor:       actor,
		})
		if err != nil {
			return err
		}
		consumed := row.OriginalValue - row.CurrentBalance
		if consumed > 0 {
			applied, _, err = s.ledgerSvc.ApplyEntryInTx(tx, ApplyEntryInput{
				TenantID:    tenant.ID,
				GiftCardID:  card.ID,
				Amount:      -consumed,
				Kind:        constants.LedgerKindAdjustment,
				Description: "导入前已消费金额冲抵",
				Actor:       actor,
			})
			if err != nil {
				return err
			}
		}
		card = applied
		return nil
	}); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrGiftCardDuplicateCode
		}
		return nil, err
	}
	return card, nil
}

func buildBatchNo(now time.Time) string {
	return fmt.Sprintf("IMP%s%06d", now.UTC().Format("20060102150405"), now.UnixNano()%1000000)
}

// ListBatches 查询导入批次历史
func (s *ImportService) ListBatches(tenantID uint, page, pageSize int) ([]models.GiftCardBatch, int64, error) {
	return s.batchRepo.List(tenantID, page, pageSize)
}

// GetBatch 查询单个导入批次
func (s *ImportService) GetBatch(tenantID, batchID uint) (*models.GiftCardBatch, error) {
	batch, err := s.batchRepo.GetByID(tenantID, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, ErrGiftCardNotFound
	}
	return batch, nil
}
