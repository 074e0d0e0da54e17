package public

import (
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/constants"
	handlershared "github.com/bookwell-commerce/internal/http/handlers/shared"
	"github.com/bookwell-commerce/internal/http/response"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/service"

	"github.com/gin-gonic/gin"
)

// PurchaseGiftCardRequest 购买回调发卡请求（预订平台下单后回调）
type PurchaseGiftCardRequest struct {
	Value             string  `json:"value" binding:"required"`
	ExpiryDays        *int    `json:"expiry_days"`
	PurchasedAt       string  `json:"purchased_at"`
	PurchasedForEmail *string `json:"purchased_for_email"`
	PurchasedByEmail  *string `json:"purchased_by_email"`
	PurchasedByName   *string `json:"purchased_by_name"`
	IdempotencyKey    string  `json:"idempotency_key"`
	Description       string  `json:"description"`
}

// CheckoutRedeemRequest 结账核销请求
type CheckoutRedeemRequest struct {
	Code        string `json:"code" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

type publicGiftCard struct {
	PublicID       string       `json:"public_id"`
	Code           string       `json:"code"`
	OriginalValue  models.Money `json:"original_value"`
	CurrentBalance models.Money `json:"current_balance"`
	Status         string       `json:"status"`
	ExpiresAt      *time.Time   `json:"expires_at"`
}

func newPublicGiftCard(card *models.GiftCard, status string) publicGiftCard {
	return publicGiftCard{
		PublicID:       card.PublicID,
		Code:           card.Code,
		OriginalValue:  card.OriginalValue,
		CurrentBalance: card.CurrentBalance,
		Status:         status,
		ExpiresAt:      card.ExpiresAt,
	}
}

func getTenantID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "tenant_id")
}

// PurchaseGiftCard 购买回调发卡。
// 回调可能重试，idempotency_key 必填以保证最多发一张卡。
func (h *Handler) PurchaseGiftCard(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	var req PurchaseGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	idemKey := strings.TrimSpace(req.IdempotencyKey)
	if idemKey == "" {
		idemKey = strings.TrimSpace(c.GetHeader("X-Idempotency-Key"))
	}
	if idemKey == "" {
		handlershared.RespondError(c, response.CodeBadRequest, "idempotency_key required", nil)
		return
	}
	value, err := models.ParseMoney(strings.TrimSpace(req.Value))
	if err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid value", err)
		return
	}
	var purchasedAt *time.Time
	if raw := strings.TrimSpace(req.PurchasedAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			handlershared.RespondError(c, response.CodeBadRequest, "invalid purchased_at", err)
			return
		}
		purchasedAt = &parsed
	}

	card, err := h.IssueService.Issue(service.IssueInput{
		TenantID:          tenantID,
		Value:             value,
		ExpiryDays:        req.ExpiryDays,
		PurchasedAt:       purchasedAt,
		PurchasedForEmail: req.PurchasedForEmail,
		PurchasedByEmail:  req.PurchasedByEmail,
		PurchasedByName:   req.PurchasedByName,
		IdempotencyKey:    idemKey,
		Description:       req.Description,
		Actor:             "api",
	})
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, newPublicGiftCard(card, service.EffectiveGiftCardStatus(card, time.Now())))
}

// GetGiftCardByPublicID 按对外 UUID 查卡片（发放通知中携带 public_id）
func (h *Handler) GetGiftCardByPublicID(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	publicID := strings.TrimSpace(c.Param("public_id"))
	view, err := h.GiftCardService.GetByPublicID(tenantID, publicID)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, newPublicGiftCard(view.Card, view.Status))
}

// GetGiftCardBalance 按卡号查余额
func (h *Handler) GetGiftCardBalance(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	code := strings.TrimSpace(c.Param("code"))
	card, status, err := h.RedeemService.CheckBalance(tenantID, code)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, newPublicGiftCard(card, status))
}

// CheckoutRedeem 结账核销
func (h *Handler) CheckoutRedeem(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	var req CheckoutRedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	amount, err := models.ParseMoney(strings.TrimSpace(req.Amount))
	if err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid amount", err)
		return
	}
	card, entry, err := h.RedeemService.Redeem(service.RedeemInput{
		TenantID:    tenantID,
		Code:        req.Code,
		Amount:      amount,
		Channel:     constants.RedeemChannelCheckout,
		Description: req.Description,
		Actor:       "api",
	})
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"card":  newPublicGiftCard(card, service.EffectiveGiftCardStatus(card, time.Now())),
		"entry": entry,
	})
}
