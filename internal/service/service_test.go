package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:gift_card_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Staff{},
		&models.GiftCardBatch{},
		&models.GiftCard{},
		&models.LedgerEntry{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, id uint) *models.Tenant {
	t.Helper()
	tenant := models.Tenant{
		ID:        id,
		Name:      fmt.Sprintf("测试商户 %d", id),
		Slug:      fmt.Sprintf("tenant-%d", id),
		Currency:  "USD",
		Status:    models.TenantStatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("create tenant failed: %v", err)
	}
	return &tenant
}

func newTestServices(t *testing.T, db *gorm.DB) (*IssueService, *RedeemService, *GiftCardService, *LedgerService, *ImportService) {
	t.Helper()
	cardRepo := repository.NewGiftCardRepository(db)
	entryRepo := repository.NewLedgerEntryRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	batchRepo := repository.NewGiftCardBatchRepository(db)

	ledgerSvc := NewLedgerService(cardRepo, entryRepo, 0)
	codeGen := NewCodeGenerator(cardRepo, CodeGeneratorOptions{})
	issueSvc := NewIssueService(cardRepo, tenantRepo, ledgerSvc, codeGen, nil)
	redeemSvc := NewRedeemService(cardRepo, ledgerSvc)
	cardSvc := NewGiftCardService(cardRepo, ledgerSvc)
	importSvc := NewImportService(cardRepo, batchRepo, tenantRepo, ledgerSvc, codeGen)
	return issueSvc, redeemSvc, cardSvc, ledgerSvc, importSvc
}
