package queue

import (
	"encoding/json"

	"github.com/bookwell-commerce/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskGiftCardDelivery 礼品卡发放通知任务
	TaskGiftCardDelivery = constants.TaskGiftCardDelivery
)

// GiftCardDeliveryPayload 发放通知任务载荷
type GiftCardDeliveryPayload struct {
	TenantID   uint `json:"tenant_id"`
	GiftCardID uint `json:"gift_card_id"`
}

// NewGiftCardDeliveryTask 创建发放通知任务
func NewGiftCardDeliveryTask(payload GiftCardDeliveryPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGiftCardDelivery, body), nil
}
