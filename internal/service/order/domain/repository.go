// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，由基础设施层实现。
type OrderRepository interface {
	// Save 持久化一个订单聚合，并为新订单分配自增 ID。
	Save(ctx context.Context, order *Order) error

	// FindByID 根据 ID 查找订单。不存在时返回 ErrOrderNotFound。
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindAll 返回所有已持久化的订单，按 ID 升序。
	FindAll(ctx context.Context) ([]*Order, error)
}
