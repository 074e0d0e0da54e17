package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/models"

	"gorm.io/gorm"
)

// StaffRepository 员工仓储接口
type StaffRepository interface {
	Create(staff *models.Staff) error
	GetByID(id uint) (*models.Staff, error)
	GetByEmail(tenantID uint, email string) (*models.Staff, error)
	Update(staff *models.Staff) error
	TouchLastLogin(id uint, at time.Time) error
}

// GormStaffRepository GORM 员工仓储实现
type GormStaffRepository struct {
	db *gorm.DB
}

// NewStaffRepository 创建员工仓储
func NewStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// Create 创建员工
func (r *GormStaffRepository) Create(staff *models.Staff) error {
	if staff == nil {
		return errors.New("invalid staff")
	}
	return r.db.Create(staff).Error
}

// GetByID 根据 ID 查询员工
func (r *GormStaffRepository) GetByID(id uint) (*models.Staff, error) {
	if id == 0 {
		return nil, nil
	}
	var staff models.Staff
	if err := r.db.Preload("Tenant").First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// GetByEmail 根据商户与邮箱查询员工
func (r *GormStaffRepository) GetByEmail(tenantID uint, email string) (*models.Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if tenantID == 0 || email == "" {
		return nil, nil
	}
	var staff models.Staff
	if err := r.db.Preload("Tenant").
		Where("tenant_id = ? AND email = ?", tenantID, email).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// Update 更新员工
func (r *GormStaffRepository) Update(staff *models.Staff) error {
	if staff == nil {
		return errors.New("invalid staff")
	}
	return r.db.Save(staff).Error
}

// TouchLastLogin 更新最后登录时间
func (r *GormStaffRepository) TouchLastLogin(id uint, at time.Time) error {
	if id == 0 {
		return nil
	}
	if at.IsZero() {
		at = time.Now()
	}
	return r.db.Model(&models.Staff{}).Where("id = ?", id).Update("last_login", at).Error
}
