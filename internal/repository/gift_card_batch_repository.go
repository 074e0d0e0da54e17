package repository

import (
	"errors"

	"github.com/bookwell-commerce/internal/models"

	"gorm.io/gorm"
)

// GiftCardBatchRepository 导入批次仓储接口
type GiftCardBatchRepository interface {
	Create(batch *models.GiftCardBatch) error
	GetByID(tenantID, id uint) (*models.GiftCardBatch, error)
	List(tenantID uint, page, pageSize int) ([]models.GiftCardBatch, int64, error)
	Update(batch *models.GiftCardBatch) error
	WithTx(tx *gorm.DB) *GormGiftCardBatchRepository
}

// GormGiftCardBatchRepository GORM 导入批次仓储实现
type GormGiftCardBatchRepository struct {
	db *gorm.DB
}

// NewGiftCardBatchRepository 创建导入批次仓储
func NewGiftCardBatchRepository(db *gorm.DB) *GormGiftCardBatchRepository {
	return &GormGiftCardBatchRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiftCardBatchRepository) WithTx(tx *gorm.DB) *GormGiftCardBatchRepository {
	if tx == nil {
		return r
	}
	return &GormGiftCardBatchRepository{db: tx}
}

// Create 创建批次
func (r *GormGiftCardBatchRepository) Create(batch *models.GiftCardBatch) error {
	if batch == nil {
		return errors.New("invalid gift card batch")
	}
	return r.db.Create(batch).Error
}

// GetByID 根据 ID 查询批次
func (r *GormGiftCardBatchRepository) GetByID(tenantID, id uint) (*models.GiftCardBatch, error) {
	if tenantID == 0 || id == 0 {
		return nil, nil
	}
	var batch models.GiftCardBatch
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// List 查询批次列表
func (r *GormGiftCardBatchRepository) List(tenantID uint, page, pageSize int) ([]models.GiftCardBatch, int64, error) {
	if tenantID == 0 {
		return []models.GiftCardBatch{}, 0, nil
	}
	query := r.db.Model(&models.GiftCardBatch{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize > 0 {
		offset := (page - 1) * pageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Limit(pageSize).Offset(offset)
	}

	var batches []models.GiftCardBatch
	if err := query.Order("id desc").Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// Update 更新批次
func (r *GormGiftCardBatchRepository) Update(batch *models.GiftCardBatch) error {
	if batch == nil {
		return errors.New("invalid gift card batch")
	}
	return r.db.Save(batch).Error
}
