package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bookwell-commerce/internal/logger"
	"github.com/bookwell-commerce/internal/provider"
	"github.com/bookwell-commerce/internal/queue"
	"github.com/bookwell-commerce/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	httpClient *http.Client
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	timeout := 5 * time.Second
	if c != nil && c.Config != nil && c.Config.Notify.TimeoutSeconds > 0 {
		timeout = time.Duration(c.Config.Notify.TimeoutSeconds) * time.Second
	}
	return &Consumer{
		Container:  c,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskGiftCardDelivery, c.handleGiftCardDelivery)
}

// giftCardDeliveryNotice 推送给商户回调地址的通知体（只含对外字段）
type giftCardDeliveryNotice struct {
	Event             string  `json:"event"`
	PublicID          string  `json:"public_id"`
	Code              string  `json:"code"`
	OriginalValue     int64   `json:"original_value"`
	CurrentBalance    int64   `json:"current_balance"`
	Status            string  `json:"status"`
	ExpiresAt         *string `json:"expires_at"`
	PurchasedForEmail *string `json:"purchased_for_email,omitempty"`
	PurchasedByName   *string `json:"purchased_by_name,omitempty"`
}

func (c *Consumer) handleGiftCardDelivery(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_gift_card_delivery_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GiftCardDeliveryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_gift_card_delivery_unmarshal_failed", "error", err)
		return err
	}
	if payload.TenantID == 0 || payload.GiftCardID == 0 {
		logger.Debugw("worker_gift_card_delivery_skip_invalid_payload",
			"tenant_id", payload.TenantID,
			"gift_card_id", payload.GiftCardID,
		)
		return nil
	}

	tenant, err := c.TenantRepo.GetByID(payload.TenantID)
	if err != nil {
		logger.Warnw("worker_gift_card_delivery_fetch_tenant_failed", "tenant_id", payload.TenantID, "error", err)
		return err
	}
	if tenant == nil || strings.TrimSpace(tenant.NotifyURL) == "" {
		logger.Debugw("worker_gift_card_delivery_skip_no_notify_url", "tenant_id", payload.TenantID)
		return nil
	}
	card, err := c.GiftCardRepo.GetByID(payload.TenantID, payload.GiftCardID)
	if err != nil {
		logger.Warnw("worker_gift_card_delivery_fetch_card_failed", "gift_card_id", payload.GiftCardID, "error", err)
		return err
	}
	if card == nil {
		logger.Debugw("worker_gift_card_delivery_skip_card_not_found", "gift_card_id", payload.GiftCardID)
		return nil
	}

	notice := giftCardDeliveryNotice{
		Event:             "gift_card.issued",
		PublicID:          card.PublicID,
		Code:              card.Code,
		OriginalValue:     card.OriginalValue.MinorUnits(),
		CurrentBalance:    card.CurrentBalance.MinorUnits(),
		Status:            service.EffectiveGiftCardStatus(card, time.Now()),
		PurchasedForEmail: card.PurchasedForEmail,
		PurchasedByName:   card.PurchasedByName,
	}
	if card.ExpiresAt != nil {
		s := card.ExpiresAt.UTC().Format(time.RFC3339)
		notice.ExpiresAt = &s
	}
	body, err := json.Marshal(notice)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tenant.NotifyURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warnw("worker_gift_card_delivery_notify_failed",
			"tenant_id", tenant.ID,
			"gift_card_id", card.ID,
			"error", err,
		)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warnw("worker_gift_card_delivery_notify_rejected",
			"tenant_id", tenant.ID,
			"gift_card_id", card.ID,
			"status_code", resp.StatusCode,
		)
		// 非 2xx 返回错误交给 asynq 重试
		return fmt.Errorf("notify url returned status %d", resp.StatusCode)
	}
	logger.Infow("worker_gift_card_delivery_notified", "tenant_id", tenant.ID, "gift_card_id", card.ID)
	return nil
}
