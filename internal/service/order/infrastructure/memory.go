// internal/service/order/infrastructure/memory.go
package infrastructure

import (
	"context"
	"sort"
	"sync"

	"stockyard/internal/service/order/domain"
)

// MemoryOrderRepository 是 OrderRepository 的进程内实现，
// 主要用于测试和无数据库的部署形态。
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	seq    int64
	orders map[int64]*domain.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[int64]*domain.Order)}
}

func (r *MemoryOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == 0 {
		r.seq++
		order.ID = r.seq
	}
	stored := *order
	stored.Lines = append([]domain.OrderLine(nil), order.Lines...)
	r.orders[order.ID] = &stored
	return nil
}

func (r *MemoryOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	copied.Lines = append([]domain.OrderLine(nil), order.Lines...)
	return &copied, nil
}

func (r *MemoryOrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		copied := *order
		copied.Lines = append([]domain.OrderLine(nil), order.Lines...)
		orders = append(orders, &copied)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}
