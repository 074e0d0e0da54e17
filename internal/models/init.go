package models

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/bookwell-commerce/internal/constants"
	"github.com/bookwell-commerce/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// HashAPIKey 计算商户 API 密钥哈希（十六进制 SHA-256）
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// InitDefaultTenant 初始化默认商户与员工账号（仅空库时创建）
func InitDefaultTenant(email, password, apiKey string) error {
	var count int64
	DB.Model(&Tenant{}).Count(&count)
	if count > 0 {
		return nil
	}

	if email == "" {
		email = "owner@example.com"
	}
	if password == "" {
		password = "changeme123"
	}

	tenant := Tenant{
		Name:     "Demo Tenant",
		Slug:     "demo",
		Currency: constants.SiteCurrencyDefault,
		Status:   TenantStatusActive,
	}
	if apiKey != "" {
		tenant.APIKeyHash = HashAPIKey(apiKey)
	}
	if err := DB.Create(&tenant).Error; err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	staff := Staff{
		TenantID: tenant.ID,
		Email:    email,
		Name:     "Owner",
		Password: string(hash),
		Status:   StaffStatusActive,
	}
	if err := DB.Create(&staff).Error; err != nil {
		return err
	}

	if password == "changeme123" {
		logger.Warnw("default_staff_created_with_default_password", "email", email)
		logger.Warnw("default_staff_password_change_required", "email", email)
	} else {
		logger.Warnw("default_staff_created", "email", email, "password_hidden", true)
	}
	return nil
}
