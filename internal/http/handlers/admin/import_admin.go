package admin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bookwell-commerce/internal/http/response"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/service"

	"github.com/gin-gonic/gin"
)

// ImportGiftCardRow 批量导入行
type ImportGiftCardRow struct {
	Code              string  `json:"code" binding:"required"`
	OriginalValue     string  `json:"original_value" binding:"required"`
	CurrentBalance    string  `json:"current_balance" binding:"required"`
	ExpiresAt         string  `json:"expires_at"`
	PurchasedAt       string  `json:"purchased_at"`
	PurchasedForEmail *string `json:"purchased_for_email"`
	PurchasedByEmail  *string `json:"purchased_by_email"`
	PurchasedByName   *string `json:"purchased_by_name"`
}

// ImportGiftCardsRequest 批量导入请求
type ImportGiftCardsRequest struct {
	Source string              `json:"source"`
	Rows   []ImportGiftCardRow `json:"rows" binding:"required"`
}

// ImportGiftCards 批量导入存量礼品卡
func (h *Handler) ImportGiftCards(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	var req ImportGiftCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	rows := make([]service.ImportRow, 0, len(req.Rows))
	for i, raw := range req.Rows {
		row, err := buildImportRow(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, fmt.Sprintf("invalid import row %d", i), err)
			return
		}
		rows = append(rows, row)
	}

	result, err := h.ImportService.Import(service.ImportInput{
		TenantID: tenantID,
		Source:   req.Source,
		Rows:     rows,
		StaffID:  &staffID,
		Actor:    staffActor(staffID),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"batch":    result.Batch,
		"rows":     result.Rows,
		"imported": result.Imported,
		"failed":   result.Failed,
	})
}

// GetImportBatches 查询导入批次历史
func (h *Handler) GetImportBatches(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	batches, total, err := h.ImportService.ListBatches(tenantID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "import batch fetch failed", err)
		return
	}
	response.SuccessWithPage(c, batches, response.NewPagination(page, pageSize, total))
}

// GetImportBatch 查询单个导入批次
func (h *Handler) GetImportBatch(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	batchID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid batch id", nil)
		return
	}
	batch, err := h.ImportService.GetBatch(tenantID, batchID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, batch)
}

func buildImportRow(raw ImportGiftCardRow) (service.ImportRow, error) {
	var row service.ImportRow
	originalValue, err := models.ParseMoney(strings.TrimSpace(raw.OriginalValue))
	if err != nil {
		return row, err
	}
	currentBalance, err := models.ParseMoney(strings.TrimSpace(raw.CurrentBalance))
	if err != nil {
		return row, err
	}
	expiresAt, err := parseTimeNullable(raw.ExpiresAt)
	if err != nil {
		return row, err
	}
	purchasedAt, err := parseTimeNullable(raw.PurchasedAt)
	if err != nil {
		return row, err
	}
	row = service.ImportRow{
		Code:              raw.Code,
		OriginalValue:     originalValue,
		CurrentBalance:    currentBalance,
		ExpiresAt:         expiresAt,
		PurchasedAt:       purchasedAt,
		PurchasedForEmail: raw.PurchasedForEmail,
		PurchasedByEmail:  raw.PurchasedByEmail,
		PurchasedByName:   raw.PurchasedByName,
	}
	return row, nil
}
