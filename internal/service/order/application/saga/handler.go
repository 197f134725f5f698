// internal/service/order/application/saga/handler.go
package saga

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"stockyard/internal/service/order/domain"
	"stockyard/internal/service/order/domain/port"
)

// OrderContext 在下单流程中传递上下文数据。
// 所有外部依赖都是抽象接口，由应用服务在组装时注入。
//
// 这条链没有补偿环节：预占调用已在台账侧落账的项，
// 即使后续步骤拒绝了订单也不会被反向调整。这是一个显式接受的
// 不一致窗口，由 ReserveStockHandler 负责让它可观测（日志 + 指标），
// 而不是掩盖它。
type OrderContext struct {
	Ctx    context.Context
	Order  *domain.Order
	Tracer trace.Tracer

	// 依赖出站端口
	Inventory port.InventoryReserver
	Repo      domain.OrderRepository

	// Location 是预占使用的默认库位（可配置策略）
	Location string

	// ReserveTimeout 只约束跨服务的预占调用本身，
	// 不约束链上的其他步骤；预占耗尽预算不挤占落库。
	ReserveTimeout time.Duration

	// Results 由预占步骤填充，供后续步骤与调用方检查
	Results []port.ReservationResult
}

// Handler 是链上一个处理器。
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(orderCtx *OrderContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(orderCtx *OrderContext) error {
	if h.next != nil {
		return h.next.Handle(orderCtx)
	}
	return nil
}
