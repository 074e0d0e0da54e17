package repository

import (
	"errors"
	"strings"

	"github.com/bookwell-commerce/internal/models"

	"gorm.io/gorm"
)

// TenantRepository 商户仓储接口
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id uint) (*models.Tenant, error)
	GetBySlug(slug string) (*models.Tenant, error)
	GetByAPIKeyHash(hash string) (*models.Tenant, error)
	Update(tenant *models.Tenant) error
	WithTx(tx *gorm.DB) *GormTenantRepository
}

// GormTenantRepository GORM 商户仓储实现
type GormTenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository 创建商户仓储
func NewTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTenantRepository) WithTx(tx *gorm.DB) *GormTenantRepository {
	if tx == nil {
		return r
	}
	return &GormTenantRepository{db: tx}
}

// Create 创建商户
func (r *GormTenantRepository) Create(tenant *models.Tenant) error {
	if tenant == nil {
		return errors.New("invalid tenant")
	}
	return r.db.Create(tenant).Error
}

// GetByID 根据 ID 查询商户
func (r *GormTenantRepository) GetByID(id uint) (*models.Tenant, error) {
	if id == 0 {
		return nil, nil
	}
	var tenant models.Tenant
	if err := r.db.First(&tenant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// GetBySlug 根据标识查询商户
func (r *GormTenantRepository) GetBySlug(slug string) (*models.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, nil
	}
	var tenant models.Tenant
	if err := r.db.Where("slug = ?", slug).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// GetByAPIKeyHash 根据 API 密钥哈希查询商户
func (r *GormTenantRepository) GetByAPIKeyHash(hash string) (*models.Tenant, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, nil
	}
	var tenant models.Tenant
	if err := r.db.Where("api_key_hash = ?", hash).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// Update 更新商户
func (r *GormTenantRepository) Update(tenant *models.Tenant) error {
	if tenant == nil {
		return errors.New("invalid tenant")
	}
	return r.db.Save(tenant).Error
}
