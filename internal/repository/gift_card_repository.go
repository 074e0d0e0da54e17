package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiftCardListFilter 礼品卡列表筛选（所有查询均限定在单一商户内）
type GiftCardListFilter struct {
	TenantID    uint
	Code        string
	Status      string
	BatchID     uint
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	ExpiresFrom *time.Time
	ExpiresTo   *time.Time
	Page        int
	PageSize    int
}

// GiftCardRepository 礼品卡仓储接口
type GiftCardRepository interface {
	Create(card *models.GiftCard) error
	GetByID(tenantID, id uint) (*models.GiftCard, error)
	GetByIDForUpdate(tenantID, id uint) (*models.GiftCard, error)
	GetByPublicID(tenantID uint, publicID string) (*models.GiftCard, error)
	GetByCode(tenantID uint, code string) (*models.GiftCard, error)
	GetByCodeForUpdate(tenantID uint, code string) (*models.GiftCard, error)
	GetByIdempotencyKey(tenantID uint, key string) (*models.GiftCard, error)
	List(filter GiftCardListFilter) ([]models.GiftCard, int64, error)
	Update(card *models.GiftCard) error
	WithTx(tx *gorm.DB) *GormGiftCardRepository
}

// GormGiftCardRepository GORM 礼品卡仓储实现
type GormGiftCardRepository struct {
	db *gorm.DB
}

// NewGiftCardRepository 创建礼品卡仓储
func NewGiftCardRepository(db *gorm.DB) *GormGiftCardRepository {
	return &GormGiftCardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiftCardRepository) WithTx(tx *gorm.DB) *GormGiftCardRepository {
	if tx == nil {
		return r
	}
	return &GormGiftCardRepository{db: tx}
}

// NormalizeGiftCardCode 规范化卡号（去空格、统一大写）
func NormalizeGiftCardCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create 创建礼品卡
func (r *GormGiftCardRepository) Create(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Create(card).Error
}

// GetByID 根据 ID 查询礼品卡（跨商户查询返回未找到）
func (r *GormGiftCardRepository) GetByID(tenantID, id uint) (*models.GiftCard, error) {
	if tenantID == 0 || id == 0 {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByIDForUpdate 根据 ID 加锁查询礼品卡
func (r *GormGiftCardRepository) GetByIDForUpdate(tenantID, id uint) (*models.GiftCard, error) {
	if tenantID == 0 || id == 0 {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByPublicID 根据对外 UUID 查询礼品卡
func (r *GormGiftCardRepository) GetByPublicID(tenantID uint, publicID string) (*models.GiftCard, error) {
	publicID = strings.TrimSpace(publicID)
	if tenantID == 0 || publicID == "" {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Where("tenant_id = ? AND public_id = ?", tenantID, publicID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByCode 根据卡号查询礼品卡
func (r *GormGiftCardRepository) GetByCode(tenantID uint, code string) (*models.GiftCard, error) {
	code = NormalizeGiftCardCode(code)
	if tenantID == 0 || code == "" {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Where("tenant_id = ? AND code = ?", tenantID, code).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByCodeForUpdate 根据卡号加锁查询礼品卡
func (r *GormGiftCardRepository) GetByCodeForUpdate(tenantID uint, code string) (*models.GiftCard, error) {
	code = NormalizeGiftCardCode(code)
	if tenantID == 0 || code == "" {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByIdempotencyKey 根据幂等键查询礼品卡
func (r *GormGiftCardRepository) GetByIdempotencyKey(tenantID uint, key string) (*models.GiftCard, error) {
	key = strings.TrimSpace(key)
	if tenantID == 0 || key == "" {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// List 查询礼品卡列表
func (r *GormGiftCardRepository) List(filter GiftCardListFilter) ([]models.GiftCard, int64, error) {
	if filter.TenantID == 0 {
		return []models.GiftCard{}, 0, nil
	}
	query := r.db.Model(&models.GiftCard{}).Preload("Batch").
		Where("tenant_id = ?", filter.TenantID)
	if code := NormalizeGiftCardCode(filter.Code); code != "" {
		query = query.Where("code LIKE ?", "%"+code+"%")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		now := time.Now()
		// expired 是派生状态：入库仍为 active，只按过期时间区分
		switch status {
		case models.GiftCardStatusExpired:
			query = query.Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.GiftCardStatusActive, now)
		case models.GiftCardStatusActive:
			query = query.Where("status = ? AND (expires_at IS NULL OR expires_at >= ?)", models.GiftCardStatusActive, now)
		default:
			query = query.Where("status = ?", status)
		}
	}
	if filter.BatchID > 0 {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		query = query.Where("purchased_for_email = ? OR purchased_by_email = ?", email, email)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.ExpiresFrom != nil {
		query = query.Where("expires_at >= ?", *filter.ExpiresFrom)
	}
	if filter.ExpiresTo != nil {
		query = query.Where("expires_at <= ?", *filter.ExpiresTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var cards []models.GiftCard
	if err := query.Order("id desc").Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// Update 更新礼品卡
func (r *GormGiftCardRepository) Update(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Save(card).Error
}
