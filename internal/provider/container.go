package provider

import (
	"time"

	"github.com/bookwell-commerce/internal/cache"
	"github.com/bookwell-commerce/internal/config"
	"github.com/bookwell-commerce/internal/logger"
	"github.com/bookwell-commerce/internal/models"
	"github.com/bookwell-commerce/internal/queue"
	"github.com/bookwell-commerce/internal/repository"
	"github.com/bookwell-commerce/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	TenantRepo        repository.TenantRepository
	StaffRepo         repository.StaffRepository
	GiftCardRepo      repository.GiftCardRepository
	GiftCardBatchRepo repository.GiftCardBatchRepository
	LedgerEntryRepo   repository.LedgerEntryRepository

	// Services
	AuthService     *service.AuthService
	LedgerService   *service.LedgerService
	IssueService    *service.IssueService
	RedeemService   *service.RedeemService
	GiftCardService *service.GiftCardService
	ImportService   *service.ImportService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue, cfg.Notify.MaxRetry)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.TenantRepo = repository.NewTenantRepository(db)
	c.StaffRepo = repository.NewStaffRepository(db)
	c.GiftCardRepo = repository.NewGiftCardRepository(db)
	c.GiftCardBatchRepo = repository.NewGiftCardBatchRepository(db)
	c.LedgerEntryRepo = repository.NewLedgerEntryRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	c.AuthService = service.NewAuthService(c.StaffRepo, c.TenantRepo, cfg.JWT.SecretKey, cfg.JWT.ExpireHours)
	c.LedgerService = service.NewLedgerService(c.GiftCardRepo, c.LedgerEntryRepo,
		time.Duration(cfg.GiftCard.ConflictRetryBackoff)*time.Millisecond)

	codeGen := service.NewCodeGenerator(c.GiftCardRepo, service.CodeGeneratorOptions{
		Prefix:      cfg.GiftCard.CodePrefix,
		Groups:      cfg.GiftCard.CodeGroups,
		GroupLength: cfg.GiftCard.CodeGroupLength,
		MaxAttempts: cfg.GiftCard.CodeMaxAttempts,
	})
	var enqueuer service.DeliveryEnqueuer
	if c.QueueClient != nil && c.QueueClient.Enabled() {
		enqueuer = c.QueueClient
	}
	c.IssueService = service.NewIssueService(c.GiftCardRepo, c.TenantRepo, c.LedgerService, codeGen, enqueuer)
	c.RedeemService = service.NewRedeemService(c.GiftCardRepo, c.LedgerService)
	c.GiftCardService = service.NewGiftCardService(c.GiftCardRepo, c.LedgerService)
	c.ImportService = service.NewImportService(c.GiftCardRepo, c.GiftCardBatchRepo, c.TenantRepo, c.LedgerService, codeGen)
}

// Close 释放容器持有的资源
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
