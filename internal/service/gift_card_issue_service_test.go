package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bookwell-commerce/internal/models"
)

func TestIssueServiceCreatesCardWithLedgerEntry(t *testing.T) {
	db := setupServiceTestDB(t)
	seedTenant(t, db, 1)
	issueSvc, _, _, ledgerSvc, _ := newTestServices(t, db)

	email := "recipient@example.com"
	card, err := issueSvc.Issue(IssueInput{
		TenantID:          1,
		Value:             models.Money(5000),
		PurchasedForEmail: &email,
		Actor:             "staff:1",
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if card.ID == 0 || card.PublicID == "" {
		t.Fatalf("invalid card: %+v", card)
	}
	if card.OriginalValue != 5000 || card.CurrentBalance != 5000 {
		t.Fatalf("unexpected balances: original=%d current=%d", card.OriginalValue, card.CurrentBalance)
	}
	if card.Status != models.GiftCardStatusActive {
		t.Fatalf("unexpected status: %s", card.Status)
	}

	entries, err := ledgerSvc.ListEntries(1, card.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Amount != 5000 || entries[0].BalanceBefore != 0 || entries[0].BalanceAfter != 5000 {
		t.Fatalf("unexpected issue entry: %+v", entries)
	}
}

func TestIssueServiceRejectsInvalidValue(t *testing.T) {
	db := setupServiceTestDB(t)
	seedTenant(t, db, 1)
	issueSvc, _, _, _, _ := newTestServices(t, db)

	if _, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: 0}); !errors.Is(err, ErrGiftCardInvalidValue) {
		t.Fatalf("expected ErrGiftCardInvalidValue for zero, got %v", err)
	}
	if _, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: -100}); !errors.Is(err, ErrGiftCardInvalidValue) {
		t.Fatalf("expected ErrGiftCardInvalidValue for negative, got %v", err)
	}
	if _, err := issueSvc.Issue(IssueInput{TenantID: 42, Value: 100}); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestIssueServiceIdempotencyReplay(t *testing.T) {
	db := setupServiceTestDB(t)
	seedTenant(t, db, 1)
	seedTenant(t, db, 2)
	issueSvc, _, _, ledgerSvc, _ := newTestServices(t, db)

	first, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(2500), IdempotencyKey: "order-1001"})
	if err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	replay, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(2500), IdempotencyKey: "order-1001"})
	if err != nil {
		t.Fatalf("replay issue failed: %v", err)
	}
	if replay.ID != first.ID || replay.Code != first.Code {
		t.Fatalf("replay must return the original card: first=%d replay=%d", first.ID, replay.ID)
	}
	entries, err := ledgerSvc.ListEntries(1, first.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("replay must not append a new entry, got %d", len(entries))
	}

	// 同一幂等键在不同商户下互不影响
	other, err := issueSvc.Issue(IssueInput{TenantID: 2, Value: models.Money(2500), IdempotencyKey: "order-1001"})
	if err != nil {
		t.Fatalf("issue for other tenant failed: %v", err)
	}
	if other.ID == first.ID {
		t.Fatal("idempotency key must be tenant scoped")
	}
}

func TestIssueServiceRequestedCodeAndDuplicate(t *testing.T) {
	db := setupServiceTestDB(t)
	seedTenant(t, db, 1)
	issueSvc, _, _, _, _ := newTestServices(t, db)

	card, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(1000), Code: "gc-migr-ated-0001"})
	if err != nil {
		t.Fatalf("issue with requested code failed: %v", err)
	}
	if card.Code != "GC-MIGR-ATED-0001" {
		t.Fatalf("code should be normalized uppercase, got %s", card.Code)
	}
	_, err = issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(1000), Code: "GC-MIGR-ATED-0001"})
	if !errors.Is(err, ErrGiftCardDuplicateCode) {
		t.Fatalf("expected ErrGiftCardDuplicateCode, got %v", err)
	}
}

func TestIssueServiceExpiryFromTenantDefault(t *testing.T) {
	db := setupServiceTestDB(t)
	tenant := seedTenant(t, db, 1)
	days := 90
	tenant.DefaultExpiryDays = &days
	if err := db.Save(tenant).Error; err != nil {
		t.Fatalf("update tenant failed: %v", err)
	}
	issueSvc, _, _, _, _ := newTestServices(t, db)

	card, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(1000)})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if card.ExpiresAt == nil {
		t.Fatal("expected expiry from tenant default")
	}
	want := card.PurchasedAt.AddDate(0, 0, 90)
	if !card.ExpiresAt.Equal(want) {
		t.Fatalf("expiry = %v, want %v", card.ExpiresAt, want)
	}

	// 覆盖商户默认：0 天表示永不过期
	zero := 0
	forever, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(1000), ExpiryDays: &zero})
	if err != nil {
		t.Fatalf("issue with override failed: %v", err)
	}
	if forever.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", forever.ExpiresAt)
	}
}

func TestIssueServiceBackdatedPurchase(t *testing.T) {
	db := setupServiceTestDB(t)
	seedTenant(t, db, 1)
	issueSvc, _, _, _, _ := newTestServices(t, db)

	purchased := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	days := 30
	card, err := issueSvc.Issue(IssueInput{
		TenantID:    1,
		Value:       models.Money(1000),
		PurchasedAt: &purchased,
		ExpiryDays:  &days,
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if !card.PurchasedAt.Equal(purchased) {
		t.Fatalf("purchased at = %v, want %v", card.PurchasedAt, purchased)
	}
	want := purchased.AddDate(0, 0, 30)
	if card.ExpiresAt == nil || !card.ExpiresAt.Equal(want) {
		t.Fatalf("expiry = %v, want %v", card.ExpiresAt, want)
	}
}
