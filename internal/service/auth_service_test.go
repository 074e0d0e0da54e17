package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := setupServiceTestDB(t)
	tenant := seedTenant(t, db, 1)

	hash, err := bcrypt.GenerateFromPassword([]byte("正确密码123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	staff := models.Staff{
		TenantID:  tenant.ID,
		Email:     "manager@example.com",
		Name:      "店长",
		Password:  string(hash),
		Status:    models.StaffStatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	svc := NewAuthService(repository.NewStaffRepository(db), repository.NewTenantRepository(db), "test-secret", 1)
	return svc, db
}

func TestAuthServiceLoginAndParse(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	result, err := svc.Login(LoginInput{TenantSlug: "tenant-1", Email: "manager@example.com", Password: "正确密码123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" || result.Staff == nil {
		t.Fatalf("invalid login result: %+v", result)
	}

	claims, err := svc.ParseToken(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.StaffID != result.Staff.ID || claims.TenantID != 1 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	if _, err := svc.Login(LoginInput{TenantSlug: "tenant-1", Email: "manager@example.com", Password: "错误密码"}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := svc.Login(LoginInput{TenantSlug: "tenant-1", Email: "nobody@example.com", Password: "x"}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("unknown account must look like wrong password, got %v", err)
	}
	if _, err := svc.Login(LoginInput{TenantSlug: "no-such-tenant", Email: "manager@example.com", Password: "x"}); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}

	if err := db.Model(&models.Staff{}).Where("email = ?", "manager@example.com").Update("status", models.StaffStatusDisabled).Error; err != nil {
		t.Fatalf("disable staff failed: %v", err)
	}
	if _, err := svc.Login(LoginInput{TenantSlug: "tenant-1", Email: "manager@example.com", Password: "正确密码123"}); !errors.Is(err, ErrStaffDisabled) {
		t.Fatalf("expected ErrStaffDisabled, got %v", err)
	}
}

func TestAuthServiceParseTokenRejectsGarbage(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)
	if _, err := svc.ParseToken(""); err == nil {
		t.Fatal("empty token must fail")
	}
	if _, err := svc.ParseToken("not.a.token"); err == nil {
		t.Fatal("malformed token must fail")
	}
	// 不同密钥签发的令牌不可通过校验
	claims := StaffClaims{StaffID: 1, TenantID: 1}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	if _, err := svc.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must fail")
	}
}
