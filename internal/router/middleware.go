package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/cache"
	"github.com/bookwell-commerce/internal/config"
	"github.com/bookwell-commerce/internal/http/response"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/repository"
	"github.com/bookwell-commerce/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// StaffIDContextKey 员工 ID 上下文键
const StaffIDContextKey = "staff_id"

// TenantIDContextKey 商户 ID 上下文键
const TenantIDContextKey = "tenant_id"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-Api-Key",
			"X-Idempotency-Key",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// StaffAuthMiddleware 员工 JWT 鉴权中间件，解析后注入 staff_id 与 tenant_id
func StaffAuthMiddleware(authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authSvc == nil {
			response.Unauthorized(c, "authentication unavailable")
			c.Abort()
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := authSvc.ParseToken(parts[1])
		if err != nil || claims.StaffID == 0 || claims.TenantID == 0 {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(StaffIDContextKey, claims.StaffID)
		c.Set(TenantIDContextKey, claims.TenantID)
		c.Next()
	}
}

// TenantAPIKeyMiddleware 商户 API 密钥鉴权中间件（对外接口），注入 tenant_id
func TenantAPIKeyMiddleware(tenantRepo repository.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenantRepo == nil {
			response.Unauthorized(c, "authentication unavailable")
			c.Abort()
			return
		}
		apiKey := strings.TrimSpace(c.GetHeader("X-Api-Key"))
		if apiKey == "" {
			response.Unauthorized(c, "missing api key")
			c.Abort()
			return
		}
		tenant, err := lookupTenantByAPIKey(c, tenantRepo, apiKey)
		if err != nil || tenant == nil {
			response.Unauthorized(c, "invalid api key")
			c.Abort()
			return
		}
		if tenant.Status != models.TenantStatusActive {
			response.Forbidden(c, "tenant disabled")
			c.Abort()
			return
		}
		c.Set(TenantIDContextKey, tenant.ID)
		c.Next()
	}
}

// 密钥查询缓存较短，保证停用或换钥在一个 TTL 内生效
const tenantAPIKeyCacheTTL = 30 * time.Second

func lookupTenantByAPIKey(c *gin.Context, tenantRepo repository.TenantRepository, apiKey string) (*models.Tenant, error) {
	hash := models.HashAPIKey(apiKey)
	cacheKey := "tenant:apikey:" + hash

	ctx := c.Request.Context()
	var cached models.Tenant
	if found, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	tenant, err := tenantRepo.GetByAPIKeyHash(hash)
	if err != nil || tenant == nil {
		return nil, err
	}
	_ = cache.SetJSON(ctx, cacheKey, tenant, tenantAPIKeyCacheTTL)
	return tenant, nil
}
