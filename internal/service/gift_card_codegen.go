package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/bookwell-commerce/internal/repository"
)

// codeAlphabet 去除了易混淆字符（0/O、1/I、l）的卡号字符集
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// CodeGeneratorOptions 卡号生成配置
type CodeGeneratorOptions struct {
	Prefix      string // 卡号前缀，默认 GC
	Groups      int    // 分组数量，默认 3
	GroupLength int    // 每组字符数，默认 4
	MaxAttempts int    // 冲突重试上限，默认 10
}

func (o CodeGeneratorOptions) normalize() CodeGeneratorOptions {
	if strings.TrimSpace(o.Prefix) == "" {
		o.Prefix = "GC"
	}
	o.Prefix = strings.ToUpper(strings.TrimSpace(o.Prefix))
	if o.Groups <= 0 {
		o.Groups = 3
	}
	if o.GroupLength <= 0 {
		o.GroupLength = 4
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 10
	}
	return o
}

// CodeGenerator 礼品卡卡号生成器
type CodeGenerator struct {
	repo repository.GiftCardRepository
	opts CodeGeneratorOptions
}

// NewCodeGenerator 创建卡号生成器
func NewCodeGenerator(repo repository.GiftCardRepository, opts CodeGeneratorOptions) *CodeGenerator {
	return &CodeGenerator{repo: repo, opts: opts.normalize()}
}

// RandomCode 生成一个随机卡号（不检查冲突）
func (g *CodeGenerator) RandomCode() (string, error) {
	parts := make([]string, 0, g.opts.Groups+1)
	parts = append(parts, g.opts.Prefix)
	for i := 0; i < g.opts.Groups; i++ {
		group, err := randomGroup(g.opts.GroupLength)
		if err != nil {
			return "", err
		}
		parts = append(parts, group)
	}
	return strings.Join(parts, "-"), nil
}

// NextCode 生成商户内唯一的卡号。
// 随机空间远大于存量卡数，冲突概率极低；连续命中视为异常，返回 ErrGiftCardCodeExhausted。
func (g *CodeGenerator) NextCode(tenantID uint) (string, error) {
	if g == nil || g.repo == nil {
		return "", fmt.Errorf("code generator not initialized")
	}
	for attempt := 0; attempt < g.opts.MaxAttempts; attempt++ {
		code, err := g.RandomCode()
		if err != nil {
			return "", err
		}
		existing, err := g.repo.GetByCode(tenantID, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", ErrGiftCardCodeExhausted
}

func randomGroup(length int) (string, error) {
	var sb strings.Builder
	sb.Grow(length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeAlphabet[idx.Int64()])
	}
	return sb.String(), nil
}
