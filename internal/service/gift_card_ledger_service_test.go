package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/bookwell-commerce/internal/constants"
	"github.com/bookwell-commerce/internal/models"
)

func TestLedgerServiceRunningSumMatchesBalance(t *testing.T) {
	db := setupServiceTestDB(t)
	seedTenant(t, db, 1)
	issueSvc, redeemSvc, cardSvc, ledgerSvc, _ := newTestServices(t, db)

	card, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(5000), Actor: "staff:1"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, _, err := redeemSvc.Redeem(RedeemInput{TenantID: 1, Code: card.Code, Amount: 1200, Actor: "staff:1"}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if _, _, err := cardSvc.Adjust(AdjustInput{TenantID: 1, GiftCardID: card.ID, Delta: 300, Description: "客服补偿", Actor: "staff:2"}); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	ok, sum, err := ledgerSvc.VerifyBalance(1, card.ID)
	if err != nil {
		t.Fatalf("verify balance failed: %v", err)
	}
	if !ok {
		t.Fatalf("ledger sum %d does not match card balance", sum.MinorUnits())
	}
	if sum.MinorUnits() != 4100 {
		t.Fatalf("expected sum 4100, got %d", sum.MinorUnits())
	}

	entries, err := ledgerSvc.ListEntries(1, card.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// 相邻流水余额衔接
	for i, entry := range entries {
		if entry.BalanceAfter != entry.BalanceBefore+entry.Amount {
			t.Fatalf("entry %d balance mismatch: %d + %d != %d", i, entry.BalanceBefore, entry.Amount, entry.BalanceAfter)
		}
		if i > 0 && entry.BalanceBefore != entries[i-1].BalanceAfter {
			t.Fatalf("entry %d does not chain from previous balance", i)
		}
	}
}

func TestLedgerServiceRejectsExceedingOriginalValue(t *testing.T) {
	db := setupServiceTestDB(t)
	seedTenant(t, db, 1)
	issueSvc, _, cardSvc, _, _ := newTestServices(t, db)

	card, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(1000)})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	_, _, err = cardSvc.Adjust(AdjustInput{TenantID: 1, GiftCardID: card.ID, Delta: 1, Actor: "staff:1"})
	if !errors.Is(err, ErrGiftCardBalanceExceeded) {
		t.Fatalf("expected ErrGiftCardBalanceExceeded, got %v", err)
	}
}

func TestLedgerServiceRejectsVoidedCard(t *testing.T) {
	db := setupServiceTestDB(t)
	seedTenant(t, db, 1)
	issueSvc, redeemSvc, cardSvc, ledgerSvc, _ := newTestServices(t, db)

	card, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(2000)})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	voided, entry, err := cardSvc.Void(1, card.ID, "欺诈作废", "staff:9")
	if err != nil {
		t.Fatalf("void failed: %v", err)
	}
	if voided.Status != models.GiftCardStatusVoided || voided.CurrentBalance != 0 {
		t.Fatalf("unexpected voided card state: %s balance=%d", voided.Status, voided.CurrentBalance)
	}
	if entry.Kind != constants.LedgerKindVoid || entry.Amount != -2000 {
		t.Fatalf("unexpected void entry: kind=%s amount=%d", entry.Kind, entry.Amount)
	}

	// 作废后流水累计归零，且不可再核销或调整
	ok, sum, err := ledgerSvc.VerifyBalance(1, card.ID)
	if err != nil || !ok || sum != 0 {
		t.Fatalf("void ledger should sum to zero: ok=%v sum=%d err=%v", ok, sum, err)
	}
	if _, _, err := redeemSvc.Redeem(RedeemInput{TenantID: 1, Code: card.Code, Amount: 100}); !errors.Is(err, ErrGiftCardVoided) {
		t.Fatalf("expected ErrGiftCardVoided on redeem, got %v", err)
	}
	if _, _, err := cardSvc.Adjust(AdjustInput{TenantID: 1, GiftCardID: card.ID, Delta: 100}); !errors.Is(err, ErrGiftCardVoided) {
		t.Fatalf("expected ErrGiftCardVoided on adjust, got %v", err)
	}
	if _, _, err := cardSvc.Void(1, card.ID, "", ""); !errors.Is(err, ErrGiftCardVoided) {
		t.Fatalf("expected ErrGiftCardVoided on double void, got %v", err)
	}
}

func TestLedgerServiceConcurrentRedemption(t *testing.T) {
	db := setupServiceTestDB(t)
	seedTenant(t, db, 1)
	issueSvc, redeemSvc, _, ledgerSvc, _ := newTestServices(t, db)

	// 余额 30，两笔各 20 的并发核销最多成功一笔
	card, err := issueSvc.Issue(IssueInput{TenantID: 1, Value: models.Money(3000)})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, _, results[idx] = redeemSvc.Redeem(RedeemInput{
				TenantID: 1,
				Code:     card.Code,
				Amount:   2000,
				Actor:    "pos:1",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrGiftCardInsufficientBalance) && !errors.Is(err, ErrStorageConflict) {
			t.Fatalf("unexpected concurrent redeem error: %v", err)
		}
	}
	if succeeded > 1 {
		t.Fatalf("at most one redemption may succeed, got %d", succeeded)
	}

	ok, sum, err := ledgerSvc.VerifyBalance(1, card.ID)
	if err != nil || !ok {
		t.Fatalf("ledger must stay consistent after concurrent redemptions: ok=%v sum=%d err=%v", ok, sum, err)
	}
}
