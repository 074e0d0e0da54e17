package admin

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/constants"
	"github.com/bookwell-commerce/internal/http/response"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"
	"github.com/bookwell-commerce/internal/service"

	"github.com/gin-gonic/gin"
)

// IssueGiftCardRequest 发放礼品卡请求
type IssueGiftCardRequest struct {
	Value             string  `json:"value" binding:"required"` // 十进制金额字符串，如 "50.00"
	Code              string  `json:"code"`
	ExpiryDays        *int    `json:"expiry_days"`
	PurchasedAt       string  `json:"purchased_at"`
	PurchasedForEmail *string `json:"purchased_for_email"`
	PurchasedByEmail  *string `json:"purchased_by_email"`
	PurchasedByName   *string `json:"purchased_by_name"`
	IdempotencyKey    string  `json:"idempotency_key"`
	Description       string  `json:"description"`
}

// RedeemGiftCardRequest 核销礼品卡请求
type RedeemGiftCardRequest struct {
	Code        string `json:"code" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

// UpdateGiftCardMetadataRequest 更新礼品卡元数据请求
type UpdateGiftCardMetadataRequest struct {
	PurchasedForEmail *string `json:"purchased_for_email"`
	PurchasedByEmail  *string `json:"purchased_by_email"`
	PurchasedByName   *string `json:"purchased_by_name"`
}

// VoidGiftCardRequest 作废礼品卡请求
type VoidGiftCardRequest struct {
	Reason string `json:"reason"`
}

// AdjustGiftCardRequest 调整礼品卡余额请求
type AdjustGiftCardRequest struct {
	Delta       string `json:"delta" binding:"required"` // 带符号十进制金额，如 "-5.00"
	Description string `json:"description"`
}

type giftCardItem struct {
	models.GiftCard
	Status string `json:"status"` // 覆盖持久化状态为推导状态
}

func newGiftCardItem(view service.GiftCardView) giftCardItem {
	return giftCardItem{GiftCard: *view.Card, Status: view.Status}
}

func staffActor(staffID uint) string {
	return fmt.Sprintf("staff:%d", staffID)
}

// IssueGiftCard 发放单张礼品卡
func (h *Handler) IssueGiftCard(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	var req IssueGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	value, err := models.ParseMoney(strings.TrimSpace(req.Value))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid value", err)
		return
	}
	purchasedAt, err := parseTimeNullable(req.PurchasedAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid purchased_at", err)
		return
	}
	idemKey := strings.TrimSpace(req.IdempotencyKey)
	if idemKey == "" {
		idemKey = strings.TrimSpace(c.GetHeader("X-Idempotency-Key"))
	}

	card, err := h.IssueService.Issue(service.IssueInput{
		TenantID:          tenantID,
		Value:             value,
		Code:              req.Code,
		ExpiryDays:        req.ExpiryDays,
		PurchasedAt:       purchasedAt,
		PurchasedForEmail: req.PurchasedForEmail,
		PurchasedByEmail:  req.PurchasedByEmail,
		PurchasedByName:   req.PurchasedByName,
		IdempotencyKey:    idemKey,
		Description:       req.Description,
		Actor:             staffActor(staffID),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, newGiftCardItem(service.GiftCardView{
		Card:   card,
		Status: service.EffectiveGiftCardStatus(card, time.Now()),
	}))
}

// RedeemGiftCard 员工核销礼品卡（POS 场景）
func (h *Handler) RedeemGiftCard(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	var req RedeemGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	amount, err := models.ParseMoney(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", err)
		return
	}
	card, entry, err := h.RedeemService.Redeem(service.RedeemInput{
		TenantID:    tenantID,
		Code:        req.Code,
		Amount:      amount,
		Channel:     constants.RedeemChannelPOS,
		Description: req.Description,
		Actor:       staffActor(staffID),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"card": newGiftCardItem(service.GiftCardView{
			Card:   card,
			Status: service.EffectiveGiftCardStatus(card, time.Now()),
		}),
		"entry": entry,
	})
}

// GetGiftCard 按卡号查询礼品卡
func (h *Handler) GetGiftCard(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	code := strings.TrimSpace(c.Param("code"))
	view, err := h.GiftCardService.GetByCode(tenantID, code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, newGiftCardItem(*view))
}

// GetGiftCards 查询礼品卡列表
func (h *Handler) GetGiftCards(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.GiftCardListFilter{
		TenantID: tenantID,
		Code:     strings.TrimSpace(c.Query("code")),
		Status:   strings.TrimSpace(strings.ToLower(c.Query("status"))),
		Email:    strings.TrimSpace(c.Query("email")),
		Page:     page,
		PageSize: pageSize,
	}
	if rawBatch := strings.TrimSpace(c.Query("batch_id")); rawBatch != "" {
		parsed, err := strconv.ParseUint(rawBatch, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid batch_id", err)
			return
		}
		filter.BatchID = uint(parsed)
	}
	var err error
	if filter.CreatedFrom, err = parseTimeNullable(c.Query("created_from")); err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_from", err)
		return
	}
	if filter.CreatedTo, err = parseTimeNullable(c.Query("created_to")); err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_to", err)
		return
	}
	if filter.ExpiresFrom, err = parseTimeNullable(c.Query("expires_from")); err != nil {
		respondError(c, response.CodeBadRequest, "invalid expires_from", err)
		return
	}
	if filter.ExpiresTo, err = parseTimeNullable(c.Query("expires_to")); err != nil {
		respondError(c, response.CodeBadRequest, "invalid expires_to", err)
		return
	}

	views, total, err := h.GiftCardService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "gift card fetch failed", err)
		return
	}
	items := make([]giftCardItem, 0, len(views))
	for _, view := range views {
		items = append(items, newGiftCardItem(view))
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetGiftCardLedger 查询礼品卡流水
func (h *Handler) GetGiftCardLedger(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	cardID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid gift card id", nil)
		return
	}
	entries, err := h.GiftCardService.ListLedger(tenantID, cardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, entries)
}

// UpdateGiftCardMetadata 更新礼品卡元数据
func (h *Handler) UpdateGiftCardMetadata(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	cardID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid gift card id", nil)
		return
	}
	var req UpdateGiftCardMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	card, err := h.GiftCardService.UpdateMetadata(service.UpdateMetadataInput{
		TenantID:          tenantID,
		GiftCardID:        cardID,
		PurchasedForEmail: req.PurchasedForEmail,
		PurchasedByEmail:  req.PurchasedByEmail,
		PurchasedByName:   req.PurchasedByName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, card)
}

// VoidGiftCard 作废礼品卡
func (h *Handler) VoidGiftCard(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	cardID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid gift card id", nil)
		return
	}
	var req VoidGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	card, entry, err := h.GiftCardService.Void(tenantID, cardID, req.Reason, staffActor(staffID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"card": card, "entry": entry})
}

// AdjustGiftCard 人工调整礼品卡余额
func (h *Handler) AdjustGiftCard(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	cardID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid gift card id", nil)
		return
	}
	var req AdjustGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	delta, err := models.ParseMoney(strings.TrimSpace(req.Delta))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid delta", err)
		return
	}
	card, entry, err := h.GiftCardService.Adjust(service.AdjustInput{
		TenantID:    tenantID,
		GiftCardID:  cardID,
		Delta:       delta,
		Description: req.Description,
		Actor:       staffActor(staffID),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"card": card, "entry": entry})
}

// ExportGiftCards 导出礼品卡列表（csv 或 txt）
func (h *Handler) ExportGiftCards(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	format := strings.TrimSpace(strings.ToLower(c.DefaultQuery("format", "csv")))
	filter := repository.GiftCardListFilter{
		TenantID: tenantID,
		Status:   strings.TrimSpace(strings.ToLower(c.Query("status"))),
	}
	data, contentType, err := h.GiftCardService.Export(filter, format)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if format != "txt" {
		format = "csv"
	}
	filename := fmt.Sprintf("gift_cards_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
