// internal/service/inventory/application/service.go
package application

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockyard/internal/pkg/logger"
	"stockyard/internal/service/inventory/domain"
)

var adjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inventory_adjustments_total",
	Help: "Ledger adjustments by outcome.",
}, []string{"outcome"})

// LevelCache 是读路径可选的按 sku 缓存。实现见 infrastructure/cache。
type LevelCache interface {
	GetLevels(ctx context.Context, sku string, load func(context.Context) (map[string]int, error)) (map[string]int, error)
	Invalidate(ctx context.Context, sku string)
}

// InventoryService 编排库存台账的读写用例。
// 一致性契约完全由 StockRepository 承担，这里只做流程编排与观测。
type InventoryService struct {
	repo   domain.StockRepository
	cache  LevelCache // 可为 nil，nil 时读路径直达存储
	tracer trace.Tracer
}

func NewInventoryService(repo domain.StockRepository, cache LevelCache, tracer trace.Tracer) *InventoryService {
	return &InventoryService{repo: repo, cache: cache, tracer: tracer}
}

// GetStock 返回一个 sku 在各库位的数量。
func (s *InventoryService) GetStock(ctx context.Context, sku string) (map[string]int, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetStock")
	defer span.End()
	span.SetAttributes(attribute.String("sku", sku))

	if s.cache == nil {
		return s.repo.Get(ctx, sku)
	}
	return s.cache.GetLevels(ctx, sku, func(ctx context.Context) (map[string]int, error) {
		return s.repo.Get(ctx, sku)
	})
}

// Adjust 对单个 key 施加增量并返回新数量。
func (s *InventoryService) Adjust(ctx context.Context, req *AdjustRequest) (*AdjustResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.Adjust")
	defer span.End()
	span.SetAttributes(
		attribute.String("sku", req.SKU),
		attribute.String("location", req.Location),
		attribute.Int("delta", req.Quantity),
	)

	newQty, err := s.repo.Adjust(ctx, req.SKU, req.Location, req.Quantity)
	if err != nil {
		adjustmentsTotal.WithLabelValues("rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "adjustment rejected")
		return nil, err
	}
	adjustmentsTotal.WithLabelValues("applied").Inc()
	s.invalidate(ctx, req.SKU)

	// TODO(events): 在这里发布库存变更事件；事件总线是未实现的扩展点。
	return &AdjustResponse{SKU: req.SKU, Location: req.Location, Quantity: newQty}, nil
}

// BatchAdjust 按输入顺序逐项调整。每一项独立评估与落账：
// 某一项会变负只使该项失败，既不阻止也不回滚同批次中的任何其他项。
// 跨项的原子性由调用方自行取舍，这里不做任何保证。
func (s *InventoryService) BatchAdjust(ctx context.Context, items []BatchAdjustItem) []BatchAdjustResult {
	ctx, span := s.tracer.Start(ctx, "app.BatchAdjust")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(items)))

	results := make([]BatchAdjustResult, 0, len(items))
	touched := make(map[string]struct{})
	for _, item := range items {
		result := BatchAdjustResult{
			SKU:      item.SKU,
			Location: item.Location,
			Quantity: item.Quantity,
		}
		newQty, err := s.repo.Adjust(ctx, item.SKU, item.Location, item.Quantity)
		if err != nil {
			adjustmentsTotal.WithLabelValues("rejected").Inc()
			result.Error = errorReason(err)
		} else {
			adjustmentsTotal.WithLabelValues("applied").Inc()
			result.Success = true
			qty := newQty
			result.NewQuantity = &qty
			touched[item.SKU] = struct{}{}
		}
		results = append(results, result)
	}

	for sku := range touched {
		s.invalidate(ctx, sku)
	}
	if len(touched) > 0 {
		// TODO(events): 在这里发布库存变更事件；事件总线是未实现的扩展点。
		logger.Ctx(ctx).Debug().Int("applied_skus", len(touched)).Msg("batch adjustment applied")
	}
	return results
}

// List 是只读的查询路径，分页语义见 StockRepository.List。
func (s *InventoryService) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]domain.StockEntry, error) {
	ctx, span := s.tracer.Start(ctx, "app.List")
	defer span.End()
	return s.repo.List(ctx, filter, limit, offset)
}

// DeleteSku 删除一个 sku 的所有库位行，返回删除数量。
func (s *InventoryService) DeleteSku(ctx context.Context, sku string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "app.DeleteSku")
	defer span.End()
	span.SetAttributes(attribute.String("sku", sku))

	removed, err := s.repo.DeleteSku(ctx, sku)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, sku)
	return removed, nil
}

// DeleteSkuLocation 删除单个 (sku, location) 行。
func (s *InventoryService) DeleteSkuLocation(ctx context.Context, sku, location string) error {
	ctx, span := s.tracer.Start(ctx, "app.DeleteSkuLocation")
	defer span.End()
	span.SetAttributes(attribute.String("sku", sku), attribute.String("location", location))

	if err := s.repo.DeleteSkuLocation(ctx, sku, location); err != nil {
		return err
	}
	s.invalidate(ctx, sku)
	return nil
}

func (s *InventoryService) invalidate(ctx context.Context, sku string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, sku)
	}
}

// errorReason 把领域错误转成批量结果里对外可见的原因文本。
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient stock"
	default:
		return err.Error()
	}
}
