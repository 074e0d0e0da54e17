package admin

import (
	"time"

	"github.com/bookwell-commerce/internal/http/response"
	"github.com/bookwell-commerce/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 员工登录请求
type LoginRequest struct {
	Tenant   string `json:"tenant" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 员工登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	result, err := h.AuthService.Login(service.LoginInput{
		TenantSlug: req.Tenant,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt.UTC().Format(time.RFC3339),
		"staff": gin.H{
			"id":        result.Staff.ID,
			"tenant_id": result.Staff.TenantID,
			"email":     result.Staff.Email,
			"name":      result.Staff.Name,
		},
	})
}

// Me 获取当前登录员工信息
func (h *Handler) Me(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	staff, err := h.StaffRepo.GetByID(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "staff fetch failed", err)
		return
	}
	if staff == nil {
		respondError(c, response.CodeNotFound, "staff not found", nil)
		return
	}
	response.Success(c, staff)
}
