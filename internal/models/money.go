package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型：以最小货币单位（分）存储的整数。
// 所有余额计算基于整数，避免浮点误差；仅在 API 边界做十进制转换。
type Money int64

// NewMoneyFromMinorUnits 从最小单位整数创建金额
func NewMoneyFromMinorUnits(v int64) Money {
	return Money(v)
}

// ParseMoney 解析十进制金额字符串（如 "50.00"），按 2 位小数换算为分。
// 超过 2 位小数视为非法输入。
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid money string %q: %w", s, err)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("invalid money string %q: more than 2 decimal places", s)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("invalid money string %q: out of range", s)
	}
	return Money(minor.IntPart()), nil
}

// MinorUnits 返回最小单位整数值
func (m Money) MinorUnits() int64 {
	return int64(m)
}

// Decimal 转为十进制金额（分 -> 元）
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// IsPositive 判断金额是否大于零
func (m Money) IsPositive() bool {
	return m > 0
}

// Value 用于数据库写入（整数列）
func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = 0
		return nil
	case int64:
		*m = Money(v)
		return nil
	case int:
		*m = Money(v)
		return nil
	case []byte:
		return m.scanString(string(v))
	case string:
		return m.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
}

func (m *Money) scanString(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("cannot scan %q into Money: %w", s, err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("cannot scan %q into Money: not an integer", s)
	}
	*m = Money(d.IntPart())
	return nil
}
