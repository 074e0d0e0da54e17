package service

import "errors"

// 业务错误定义：handler 层通过 errors.Is 匹配并映射响应码
var (
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrTenantDisabled  = errors.New("tenant disabled")
	ErrStaffNotFound   = errors.New("staff not found")
	ErrStaffDisabled   = errors.New("staff disabled")
	ErrInvalidPassword = errors.New("invalid password")

	ErrGiftCardNotFound            = errors.New("gift card not found")
	ErrGiftCardInvalidValue        = errors.New("gift card value must be positive")
	ErrGiftCardInvalidAmount       = errors.New("gift card amount must be positive")
	ErrGiftCardDuplicateCode       = errors.New("gift card code already exists")
	ErrGiftCardCodeExhausted       = errors.New("gift card code generation exhausted")
	ErrGiftCardVoided              = errors.New("gift card voided")
	ErrGiftCardExpired             = errors.New("gift card expired")
	ErrGiftCardZeroBalance         = errors.New("gift card has zero balance")
	ErrGiftCardInsufficientBalance = errors.New("gift card balance insufficient")
	ErrGiftCardBalanceExceeded     = errors.New("gift card balance exceeds original value")
	ErrGiftCardImportTooLarge      = errors.New("gift card import batch too large")

	ErrStorageConflict = errors.New("storage conflict, please retry")
)
