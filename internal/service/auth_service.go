package service

import (
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/logger"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// StaffClaims 员工登录 JWT 声明
type StaffClaims struct {
	StaffID  uint   `json:"staff_id"`
	TenantID uint   `json:"tenant_id"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService 员工认证服务
type AuthService struct {
	staffRepo   repository.StaffRepository
	tenantRepo  repository.TenantRepository
	secretKey   string
	expireHours int
}

// LoginInput 登录输入
type LoginInput struct {
	TenantSlug string
	Email      string
	Password   string
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Staff     *models.Staff
}

// NewAuthService 创建认证服务
func NewAuthService(staffRepo repository.StaffRepository, tenantRepo repository.TenantRepository, secretKey string, expireHours int) *AuthService {
	if expireHours <= 0 {
		expireHours = 24
	}
	return &AuthService{
		staffRepo:   staffRepo,
		tenantRepo:  tenantRepo,
		secretKey:   secretKey,
		expireHours: expireHours,
	}
}

// Login 员工登录，校验商户、账号状态与密码后签发 JWT
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	tenant, err := s.tenantRepo.GetBySlug(input.TenantSlug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	if tenant.Status != models.TenantStatusActive {
		return nil, ErrTenantDisabled
	}

	staff, err := s.staffRepo.GetByEmail(tenant.ID, input.Email)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		// 账号不存在与密码错误返回同一错误，避免账号枚举
		return nil, ErrInvalidPassword
	}
	if staff.Status != models.StaffStatusActive {
		return nil, ErrStaffDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(input.Password)); err != nil {
		return nil, ErrInvalidPassword
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.expireHours) * time.Hour)
	claims := StaffClaims{
		StaffID:  staff.ID,
		TenantID: staff.TenantID,
		Email:    staff.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   staff.Email,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secretKey))
	if err != nil {
		return nil, err
	}

	// 登录时间更新失败不阻断登录
	if err := s.staffRepo.TouchLastLogin(staff.ID, now); err != nil {
		logger.Warnw("staff_last_login_update_failed", "staff_id", staff.ID, "error", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Staff: staff}, nil
}

// ParseToken 解析并校验员工 JWT
func (s *AuthService) ParseToken(tokenString string) (*StaffClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrStaffNotFound
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims StaffClaims
	token, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrStaffNotFound
	}
	return &claims, nil
}
