// internal/service/order/application/saga/reserve.go
package saga

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockyard/internal/pkg/logger"
	"stockyard/internal/service/order/domain"
	"stockyard/internal/service/order/domain/port"
)

// partialFailureTotal 统计"部分落账后订单被拒绝"的次数。
// 台账对这些已成功的项不做反向调整，该计数是这个缺口唯一的观测面。
var partialFailureTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "order_reservation_partial_failure_total",
	Help: "Reservations rejected after some batch items were already applied to the ledger.",
})

// ReserveStockHandler 负责库存预占步骤。
// 它把每个订单行的正需求量翻译成对默认库位的负增量，
// 一次性提交给库存服务的批量调整端点。
type ReserveStockHandler struct {
	NextHandler
}

func (h *ReserveStockHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.ReserveStock")
	defer span.End()

	items := make([]port.ReservationItem, 0, len(orderCtx.Order.Lines))
	for _, line := range orderCtx.Order.Lines {
		items = append(items, port.ReservationItem{
			SKU:      line.SKU,
			Location: orderCtx.Location,
			Delta:    -line.Quantity,
		})
	}
	span.SetAttributes(
		attribute.Int("reservation.items", len(items)),
		attribute.String("reservation.location", orderCtx.Location),
	)

	// 超时预算只盖住这一次跨服务调用；超时按传输层失败处理，
	// 超时前服务端已落账的项不会被撤回
	callCtx := ctx
	if orderCtx.ReserveTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, orderCtx.ReserveTimeout)
		defer cancel()
	}

	results, err := orderCtx.Inventory.Reserve(callCtx, items)
	if err != nil {
		// 传输层失败：无法得知服务端落账情况，不做任何猜测性补偿
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation call failed")
		return err
	}
	orderCtx.Results = results

	var failures []domain.ReservationFailure
	applied := 0
	for _, r := range results {
		if r.Success {
			applied++
			continue
		}
		failures = append(failures, domain.ReservationFailure{
			SKU:      r.SKU,
			Location: r.Location,
			Reason:   r.Reason,
		})
	}

	if len(failures) > 0 {
		err := &domain.ReservationError{Failures: failures}
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation rejected")

		if applied > 0 {
			// 批量协议已经把成功的项落账，而订单将被拒绝。
			// 没有补偿步骤——记录下来，让缺口可观测。
			partialFailureTotal.Inc()
			logger.Ctx(ctx).Warn().
				Int("applied", applied).
				Int("failed", len(failures)).
				Msg("reservation partially applied before rejection; ledger keeps the applied decrements")
			span.AddEvent("partial reservation left applied on ledger")
		}
		return err
	}

	span.AddEvent("all items reserved")
	return h.executeNext(orderCtx)
}
