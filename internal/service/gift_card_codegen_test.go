package service

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"
)

func TestCodeGeneratorFormat(t *testing.T) {
	db := setupServiceTestDB(t)
	gen := NewCodeGenerator(repository.NewGiftCardRepository(db), CodeGeneratorOptions{})

	pattern := regexp.MustCompile(`^GC(-[23456789ABCDEFGHJKLMNPQRSTUVWXYZ]{4}){3}$`)
	for i := 0; i < 50; i++ {
		code, err := gen.NextCode(1)
		if err != nil {
			t.Fatalf("next code failed: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q does not match expected format", code)
		}
		if strings.ContainsAny(code, "01OIl") {
			t.Fatalf("code %q contains ambiguous characters", code)
		}
	}
}

func TestCodeGeneratorThousandDistinctCodes(t *testing.T) {
	db := setupServiceTestDB(t)
	gen := NewCodeGenerator(repository.NewGiftCardRepository(db), CodeGeneratorOptions{})

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		code, err := gen.RandomCode()
		if err != nil {
			t.Fatalf("random code failed: %v", err)
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code generated: %s", code)
		}
		seen[code] = struct{}{}
	}
}

func TestCodeGeneratorCustomOptions(t *testing.T) {
	db := setupServiceTestDB(t)
	gen := NewCodeGenerator(repository.NewGiftCardRepository(db), CodeGeneratorOptions{
		Prefix:      "bw",
		Groups:      2,
		GroupLength: 6,
	})
	code, err := gen.NextCode(1)
	if err != nil {
		t.Fatalf("next code failed: %v", err)
	}
	if !regexp.MustCompile(`^BW(-[23456789ABCDEFGHJKLMNPQRSTUVWXYZ]{6}){2}$`).MatchString(code) {
		t.Fatalf("code %q does not match custom format", code)
	}
}

// alwaysCollideRepo 模拟所有随机卡号都已存在的仓储
type alwaysCollideRepo struct {
	repository.GiftCardRepository
}

func (alwaysCollideRepo) GetByCode(tenantID uint, code string) (*models.GiftCard, error) {
	return &models.GiftCard{Code: code}, nil
}

func TestCodeGeneratorExhaustion(t *testing.T) {
	gen := NewCodeGenerator(alwaysCollideRepo{}, CodeGeneratorOptions{MaxAttempts: 3})
	_, err := gen.NextCode(1)
	if !errors.Is(err, ErrGiftCardCodeExhausted) {
		t.Fatalf("expected ErrGiftCardCodeExhausted, got %v", err)
	}
}
