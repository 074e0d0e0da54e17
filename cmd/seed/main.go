package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"strings"

	"github.com/bookwell-commerce/internal/config"
	"github.com/bookwell-commerce/internal/logger"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"
	"github.com/bookwell-commerce/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	var (
		tenantName = flag.String("tenant", "Demo Spa", "商户名称")
		tenantSlug = flag.String("slug", "demo-spa", "商户标识（登录时使用）")
		email      = flag.String("email", "owner@demo-spa.test", "员工邮箱")
		password   = flag.String("password", "demo-password-123", "员工密码")
		expiryDays = flag.Int("expiry-days", 365, "礼品卡默认有效期（天，0 表示永久）")
		demoCards  = flag.Int("cards", 3, "演示礼品卡数量")
	)
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	tenantRepo := repository.NewTenantRepository(models.DB)
	staffRepo := repository.NewStaffRepository(models.DB)
	cardRepo := repository.NewGiftCardRepository(models.DB)
	entryRepo := repository.NewLedgerEntryRepository(models.DB)

	// 创建商户（已存在则复用）
	tenant, err := tenantRepo.GetBySlug(*tenantSlug)
	if err != nil {
		stdLog.Fatalf("Failed to load tenant: %v", err)
	}
	if tenant == nil {
		apiKey := newAPIKey()
		days := *expiryDays
		tenant = &models.Tenant{
			Name:       strings.TrimSpace(*tenantName),
			Slug:       strings.ToLower(strings.TrimSpace(*tenantSlug)),
			Currency:   "USD",
			Status:     models.TenantStatusActive,
			APIKeyHash: models.HashAPIKey(apiKey),
		}
		if days > 0 {
			tenant.DefaultExpiryDays = &days
		}
		if err := tenantRepo.Create(tenant); err != nil {
			stdLog.Fatalf("Failed to create tenant: %v", err)
		}
		stdLog.Printf("Created tenant %s (id=%d)", tenant.Slug, tenant.ID)
		// 密钥只打印一次，库中仅存哈希
		stdLog.Printf("Tenant API key (shown once, store it now): %s", apiKey)
	} else {
		stdLog.Printf("Tenant already exists: %s (id=%d)", tenant.Slug, tenant.ID)
	}

	// 创建员工（已存在则跳过）
	staff, err := staffRepo.GetByEmail(tenant.ID, *email)
	if err != nil {
		stdLog.Fatalf("Failed to load staff: %v", err)
	}
	if staff == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password: %v", err)
		}
		staff = &models.Staff{
			TenantID: tenant.ID,
			Email:    strings.ToLower(strings.TrimSpace(*email)),
			Name:     "Owner",
			Password: string(hash),
			Status:   models.StaffStatusActive,
		}
		if err := staffRepo.Create(staff); err != nil {
			stdLog.Fatalf("Failed to create staff: %v", err)
		}
		stdLog.Printf("Created staff %s (id=%d)", staff.Email, staff.ID)
	} else {
		stdLog.Printf("Staff already exists: %s (id=%d)", staff.Email, staff.ID)
	}

	// 发放演示礼品卡
	ledgerSvc := service.NewLedgerService(cardRepo, entryRepo, 0)
	codeGen := service.NewCodeGenerator(cardRepo, service.CodeGeneratorOptions{
		Prefix:      cfg.GiftCard.CodePrefix,
		Groups:      cfg.GiftCard.CodeGroups,
		GroupLength: cfg.GiftCard.CodeGroupLength,
		MaxAttempts: cfg.GiftCard.CodeMaxAttempts,
	})
	issueSvc := service.NewIssueService(cardRepo, tenantRepo, ledgerSvc, codeGen, nil)
	values := []string{"25.00", "50.00", "100.00"}
	for i := 0; i < *demoCards; i++ {
		value, err := models.ParseMoney(values[i%len(values)])
		if err != nil {
			stdLog.Fatalf("Failed to parse demo value: %v", err)
		}
		card, err := issueSvc.Issue(service.IssueInput{
			TenantID:    tenant.ID,
			Value:       value,
			Description: "seed demo card",
			Actor:       "seed",
		})
		if err != nil {
			stdLog.Printf("Failed to issue demo card: %v", err)
			continue
		}
		stdLog.Printf("Issued demo card %s value %s", card.Code, card.OriginalValue.String())
	}
}

func newAPIKey() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "bw_" + hex.EncodeToString(buf)
}
