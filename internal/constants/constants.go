package constants

// 租户相关
const (
	TenantStatusActive   = "active"
	TenantStatusDisabled = "disabled"
)

// 员工账号状态
const (
	StaffStatusActive   = "active"
	StaffStatusDisabled = "disabled"
)

// 礼品卡账务动作类型
const (
	LedgerKindIssue      = "issue"
	LedgerKindRedeem     = "redeem"
	LedgerKindAdjustment = "adjustment"
	LedgerKindVoid       = "void"
)

// 兑换渠道
const (
	RedeemChannelPOS      = "pos"
	RedeemChannelCheckout = "checkout"
)

// 队列名称
const (
	QueueDefault = "default"
)

// 异步任务类型
const (
	TaskGiftCardDelivery = "gift_card:delivery"
)

// 默认站点币种
const (
	SiteCurrencyDefault = "USD"
)

// 批量导入上限
const (
	ImportBatchMaxRows = 10000
)
