package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := strings.TrimSpace(w2.Header().Get(requestIDHeader))
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestStaffAuthMiddlewareMissingService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(StaffAuthMiddleware(nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func TestStaffAuthMiddlewareRejectsBadHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(StaffAuthMiddleware(nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Basic abcdef")
	r.ServeHTTP(w, req)

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

type stubTenantRepo struct {
	tenant *models.Tenant
}

func (s *stubTenantRepo) Create(tenant *models.Tenant) error            { return nil }
func (s *stubTenantRepo) GetByID(id uint) (*models.Tenant, error)       { return nil, nil }
func (s *stubTenantRepo) GetBySlug(slug string) (*models.Tenant, error) { return nil, nil }
func (s *stubTenantRepo) Update(tenant *models.Tenant) error            { return nil }

func (s *stubTenantRepo) WithTx(tx *gorm.DB) *repository.GormTenantRepository { return nil }

func (s *stubTenantRepo) GetByAPIKeyHash(hash string) (*models.Tenant, error) {
	if s.tenant != nil && s.tenant.APIKeyHash == hash {
		return s.tenant, nil
	}
	return nil, nil
}

func TestTenantAPIKeyMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	apiKey := "bw_test_key"
	repo := &stubTenantRepo{tenant: &models.Tenant{
		ID:         7,
		Name:       "书悦测试",
		Slug:       "shuyue",
		Status:     models.TenantStatusActive,
		APIKeyHash: models.HashAPIKey(apiKey),
	}}

	r := gin.New()
	r.Use(TenantAPIKeyMiddleware(repo))
	r.GET("/public/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant_id": c.GetUint(TenantIDContextKey)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/ping", nil)
	req.Header.Set("X-Api-Key", apiKey)
	r.ServeHTTP(w, req)

	var resp struct {
		TenantID uint `json:"tenant_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.TenantID != 7 {
		t.Fatalf("tenant_id want 7 got %d", resp.TenantID)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/public/ping", nil)
	req.Header.Set("X-Api-Key", "wrong-key")
	r.ServeHTTP(w, req)

	var errResp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if errResp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", errResp.StatusCode)
	}
}

func TestTenantAPIKeyMiddlewareRejectsDisabledTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)

	apiKey := "bw_disabled_key"
	repo := &stubTenantRepo{tenant: &models.Tenant{
		ID:         8,
		Status:     models.TenantStatusDisabled,
		APIKeyHash: models.HashAPIKey(apiKey),
	}}

	r := gin.New()
	r.Use(TenantAPIKeyMiddleware(repo))
	r.GET("/public/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/ping", nil)
	req.Header.Set("X-Api-Key", apiKey)
	r.ServeHTTP(w, req)

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("status_code want 403 got %d", resp.StatusCode)
	}
}
