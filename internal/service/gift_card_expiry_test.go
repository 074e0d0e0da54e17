package service

import (
	"testing"
	"time"

	"github.com/bookwell-commerce/internal/models"
)

func TestComputeGiftCardExpiry(t *testing.T) {
	issued := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	if got := ComputeGiftCardExpiry(issued, nil); got != nil {
		t.Fatalf("nil days should mean no expiry, got %v", got)
	}
	zero := 0
	if got := ComputeGiftCardExpiry(issued, &zero); got != nil {
		t.Fatalf("zero days should mean no expiry, got %v", got)
	}

	days := 365
	got := ComputeGiftCardExpiry(issued, &days)
	if got == nil {
		t.Fatal("expected expiry time")
	}
	want := time.Date(2027, 1, 15, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expiry = %v, want %v", got, want)
	}
}

func TestIsGiftCardExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	if IsGiftCardExpired(nil, now) {
		t.Fatal("nil expiry must never be expired")
	}
	past := now.Add(-time.Second)
	if !IsGiftCardExpired(&past, now) {
		t.Fatal("past expiry should be expired")
	}
	// 过期时间等于当前时间视为已过期
	exact := now
	if !IsGiftCardExpired(&exact, now) {
		t.Fatal("expiry equal to now should be expired")
	}
	future := now.Add(time.Second)
	if IsGiftCardExpired(&future, now) {
		t.Fatal("future expiry should not be expired")
	}
}

func TestEffectiveGiftCardStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	card := &models.GiftCard{Status: models.GiftCardStatusActive}
	if got := EffectiveGiftCardStatus(card, now); got != models.GiftCardStatusActive {
		t.Fatalf("status = %s, want active", got)
	}

	card.ExpiresAt = &past
	if got := EffectiveGiftCardStatus(card, now); got != models.GiftCardStatusExpired {
		t.Fatalf("status = %s, want expired", got)
	}

	// voided / fully_redeemed 优先于过期推导
	card.Status = models.GiftCardStatusVoided
	if got := EffectiveGiftCardStatus(card, now); got != models.GiftCardStatusVoided {
		t.Fatalf("status = %s, want voided", got)
	}
	card.Status = models.GiftCardStatusFullyRedeemed
	if got := EffectiveGiftCardStatus(card, now); got != models.GiftCardStatusFullyRedeemed {
		t.Fatalf("status = %s, want fully_redeemed", got)
	}
}
