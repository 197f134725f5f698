// internal/service/order/domain/order.go
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation 表示请求结构不合法，在触达任何外部服务之前被拒绝。
	ErrValidation = errors.New("invalid order")
	// ErrOrderNotFound 表示订单不存在。
	ErrOrderNotFound = errors.New("order not found")
	// ErrInsufficientStock 表示预占中至少有一项因库存不足失败。
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInventoryUnavailable 表示跨服务的预占调用无法完成
	// （网络不可达、超时、非预期的响应形态）。与 ErrInsufficientStock
	// 区分暴露，调用方据此判断"稍后重试"还是"订单本身无效"。
	ErrInventoryUnavailable = errors.New("inventory service unavailable")
)

// ReservationFailure 记录一个预占失败的 (sku, location) 及其原因。
type ReservationFailure struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Reason   string `json:"reason"`
}

// ReservationError 携带整批预占中所有失败项。
// 通过 Unwrap 归类为 ErrInsufficientStock，便于接口层用 errors.Is 判断。
type ReservationError struct {
	Failures []ReservationFailure
}

func (e *ReservationError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Failures))
}

func (e *ReservationError) Unwrap() error {
	return ErrInsufficientStock
}

// OrderLine 是订单中的一行。Quantity 是正的需求量，
// 预占时被转换为对台账的负增量。
type OrderLine struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Order 是订单聚合的根实体。
// 不变式: Lines 创建后不可变；状态恰好流转一次到 confirmed，
// 否则订单根本不会被创建（被拒绝的下单不留任何持久化痕迹）。
type Order struct {
	ID        int64
	Lines     []OrderLine
	State     State
	CreatedAt time.Time
}

// NewOrder 校验订单行的结构合法性并创建订单实体。
// 这里只做结构校验，不做任何库存语义检查。
func NewOrder(lines []OrderLine) (*Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for i, line := range lines {
		if line.SKU == "" {
			return nil, fmt.Errorf("%w: item %d has empty sku", ErrValidation, i)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d has non-positive quantity", ErrValidation, i)
		}
	}
	copied := make([]OrderLine, len(lines))
	copy(copied, lines)
	return &Order{
		Lines:     copied,
		State:     StatePending,
		CreatedAt: time.Now(),
	}, nil
}

// Confirm 将订单标记为 confirmed。只有全部预占成功后才会调用，
// 这是订单对读者可见的唯一入口。
func (o *Order) Confirm() error {
	if o.State != StatePending {
		return fmt.Errorf("order %d cannot be confirmed from state %s", o.ID, o.State)
	}
	o.State = StateConfirmed
	return nil
}
