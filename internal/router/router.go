package router

import (
	"fmt"
	"strings"

	"github.com/bookwell-commerce/internal/cache"
	"github.com/bookwell-commerce/internal/config"
	adminhandlers "github.com/bookwell-commerce/internal/http/handlers/admin"
	publichandlers "github.com/bookwell-commerce/internal/http/handlers/public"
	"github.com/bookwell-commerce/internal/http/response"
	"github.com/bookwell-commerce/internal/logger"
	"github.com/bookwell-commerce/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按后台/公开分组）
	adminHandler := adminhandlers.New(c)
	publicHandler := publichandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bw"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	redeemRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:redeem", redisPrefix),
		WindowSeconds: cfg.Security.RedeemRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RedeemRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口（租户 API Key 鉴权，供预订平台服务端调用）
		public := apiV1.Group("/public")
		public.Use(TenantAPIKeyMiddleware(c.TenantRepo))
		{
			public.POST("/gift-cards",
				RateLimitMiddleware(redisClient, redeemRule, KeyByIP),
				publicHandler.PurchaseGiftCard)
			public.GET("/gift-cards/:code/balance", publicHandler.GetGiftCardBalance)
			public.GET("/gift-cards/id/:public_id", publicHandler.GetGiftCardByPublicID)
			public.POST("/gift-cards/redeem",
				RateLimitMiddleware(redisClient, redeemRule, KeyByIPAndJSONField("code")),
				publicHandler.CheckoutRedeem)
		}

		// 后台接口
		admin := apiV1.Group("/admin")
		{
			admin.POST("/auth/login",
				RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")),
				adminHandler.Login)

			authed := admin.Group("")
			authed.Use(StaffAuthMiddleware(c.AuthService))
			{
				authed.GET("/auth/me", adminHandler.Me)

				authed.POST("/gift-cards", adminHandler.IssueGiftCard)
				authed.GET("/gift-cards", adminHandler.GetGiftCards)
				authed.POST("/gift-cards/redeem",
					RateLimitMiddleware(redisClient, redeemRule, KeyByIPAndJSONField("code")),
					adminHandler.RedeemGiftCard)
				authed.GET("/gift-cards/export", adminHandler.ExportGiftCards)
				authed.POST("/gift-cards/import", adminHandler.ImportGiftCards)
				authed.GET("/gift-cards/batches", adminHandler.GetImportBatches)
				authed.GET("/gift-cards/batches/:id", adminHandler.GetImportBatch)
				authed.GET("/gift-cards/code/:code", adminHandler.GetGiftCard)
				authed.GET("/gift-cards/:id/ledger", adminHandler.GetGiftCardLedger)
				authed.PATCH("/gift-cards/:id", adminHandler.UpdateGiftCardMetadata)
				authed.POST("/gift-cards/:id/void", adminHandler.VoidGiftCard)
				authed.POST("/gift-cards/:id/adjust", adminHandler.AdjustGiftCard)
			}
		}
	}

	return r
}
