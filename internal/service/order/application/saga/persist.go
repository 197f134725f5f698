// internal/service/order/application/saga/persist.go
package saga

import (
	"fmt"

	"stockyard/internal/pkg/logger"
)

// ConfirmOrderHandler 负责持久化订单。
// 只有预占全部成功才会走到这一步；这是订单对读者可见的唯一入口。
type ConfirmOrderHandler struct {
	NextHandler
}

func (h *ConfirmOrderHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.ConfirmOrder")
	defer span.End()

	if err := orderCtx.Order.Confirm(); err != nil {
		return err
	}
	if err := orderCtx.Repo.Save(ctx, orderCtx.Order); err != nil {
		return fmt.Errorf("failed to save confirmed order: %w", err)
	}
	span.AddEvent("confirmed order saved")
	logger.Ctx(ctx).Info().
		Int64("order_id", orderCtx.Order.ID).
		Int("lines", len(orderCtx.Order.Lines)).
		Msg("order confirmed")

	return h.executeNext(orderCtx)
}
