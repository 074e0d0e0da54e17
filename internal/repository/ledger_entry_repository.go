package repository

import (
	"errors"

	"github.com/bookwell-commerce/internal/models"

	"gorm.io/gorm"
)

// LedgerEntryRepository 账本流水仓储接口（只增不改）
type LedgerEntryRepository interface {
	Create(entry *models.LedgerEntry) error
	ListByCard(tenantID, giftCardID uint) ([]models.LedgerEntry, error)
	SumByCard(tenantID, giftCardID uint) (models.Money, error)
	WithTx(tx *gorm.DB) *GormLedgerEntryRepository
}

// GormLedgerEntryRepository GORM 账本流水仓储实现
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewLedgerEntryRepository 创建账本流水仓储
func NewLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLedgerEntryRepository) WithTx(tx *gorm.DB) *GormLedgerEntryRepository {
	if tx == nil {
		return r
	}
	return &GormLedgerEntryRepository{db: tx}
}

// Create 追加流水
func (r *GormLedgerEntryRepository) Create(entry *models.LedgerEntry) error {
	if entry == nil {
		return errors.New("invalid ledger entry")
	}
	return r.db.Create(entry).Error
}

// ListByCard 按时间顺序查询某张卡的全部流水
func (r *GormLedgerEntryRepository) ListByCard(tenantID, giftCardID uint) ([]models.LedgerEntry, error) {
	if tenantID == 0 || giftCardID == 0 {
		return []models.LedgerEntry{}, nil
	}
	var entries []models.LedgerEntry
	if err := r.db.Where("tenant_id = ? AND gift_card_id = ?", tenantID, giftCardID).
		Order("id asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// SumByCard 汇总某张卡的流水金额（用于对账）
func (r *GormLedgerEntryRepository) SumByCard(tenantID, giftCardID uint) (models.Money, error) {
	if tenantID == 0 || giftCardID == 0 {
		return 0, nil
	}
	var sum int64
	if err := r.db.Model(&models.LedgerEntry{}).
		Where("tenant_id = ? AND gift_card_id = ?", tenantID, giftCardID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return models.Money(sum), nil
}
