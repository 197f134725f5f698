// internal/service/order/application/service.go
package application

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockyard/internal/pkg/logger"
	"stockyard/internal/service/order/application/saga"
	"stockyard/internal/service/order/domain"
	"stockyard/internal/service/order/domain/port"
)

var ordersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "orders_total",
	Help: "Order placement attempts by outcome.",
}, []string{"outcome"})

// OrderApplicationService 编排下单流程：校验 -> 预占 -> 落库。
// 每个下单请求同步得到唯一一个结果，任何一步都不自动重试。
type OrderApplicationService struct {
	repo      domain.OrderRepository
	inventory port.InventoryReserver
	tracer    trace.Tracer

	// reservationLocation 是预占使用的默认库位（可配置策略）
	reservationLocation string
	// reserveTimeout 是单次下单流程中预占调用的超时上限
	reserveTimeout time.Duration
}

func NewOrderApplicationService(repo domain.OrderRepository, inventory port.InventoryReserver, tracer trace.Tracer, reservationLocation string, reserveTimeout time.Duration) *OrderApplicationService {
	return &OrderApplicationService{
		repo:                repo,
		inventory:           inventory,
		tracer:              tracer,
		reservationLocation: reservationLocation,
		reserveTimeout:      reserveTimeout,
	}
}

// PlaceOrder 是下单用例的入口。
// 结构校验失败返回 ErrValidation；预占调用无法完成返回
// ErrInventoryUnavailable；任何一项库存不足返回 *ReservationError
// （可按 ErrInsufficientStock 匹配）。只有全部成功订单才会落库。
func (s *OrderApplicationService) PlaceOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.PlaceOrder")
	defer span.End()

	orderEntity, err := domain.NewOrder(req.ToOrderLines())
	if err != nil {
		ordersTotal.WithLabelValues("invalid").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "order validation failed")
		return nil, err
	}

	orderContext := &saga.OrderContext{
		Ctx:            ctx,
		Order:          orderEntity,
		Tracer:         s.tracer,
		Inventory:      s.inventory,
		Repo:           s.repo,
		Location:       s.reservationLocation,
		ReserveTimeout: s.reserveTimeout,
	}

	if err := s.buildChain().Handle(orderContext); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order placement failed")
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			ordersTotal.WithLabelValues("insufficient_stock").Inc()
		case errors.Is(err, domain.ErrInventoryUnavailable):
			ordersTotal.WithLabelValues("unavailable").Inc()
		default:
			ordersTotal.WithLabelValues("error").Inc()
		}
		logger.Ctx(ctx).Info().Err(err).Msg("order rejected")
		return nil, err
	}

	ordersTotal.WithLabelValues("confirmed").Inc()
	return ToOrderResponse(orderEntity), nil
}

// GetOrder 返回单个订单。
func (s *OrderApplicationService) GetOrder(ctx context.Context, id int64) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// ListOrders 返回所有已持久化的订单。
func (s *OrderApplicationService) ListOrders(ctx context.Context) ([]*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListOrders")
	defer span.End()

	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, ToOrderResponse(order))
	}
	return out, nil
}

// buildChain 构建下单责任链。校验已在领域工厂完成，
// 链上只剩预占与落库两个步骤。
func (s *OrderApplicationService) buildChain() saga.Handler {
	chain := new(saga.ReserveStockHandler)
	chain.SetNext(new(saga.ConfirmOrderHandler))
	return chain
}
