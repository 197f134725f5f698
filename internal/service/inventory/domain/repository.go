// internal/service/inventory/domain/repository.go
package domain

import "context"

// StockRepository 定义了库存台账的持久化接口。
// 它位于领域层，由基础设施层实现。
//
// Adjust 的读-改-写对同一个 (sku, location) 必须串行化：
// 并发调整不能基于已被他人改写的旧值做负数校验。
// 不同 key 上的调整可以完全并行。
type StockRepository interface {
	// Get 返回该 sku 在各库位的数量。没有任何行时返回 ErrSkuNotFound。
	Get(ctx context.Context, sku string) (map[string]int, error)

	// Adjust 对一个 key 施加带符号增量并返回新数量。
	// 结果为负时返回 ErrInsufficientStock，存量保持不变；
	// 行不存在时按当前数量 0 处理，首次非负调整惰性建行。
	Adjust(ctx context.Context, sku, location string, delta int) (int, error)

	// List 返回满足过滤条件的行，按 (sku, location) 排序，
	// 以保证同一查询在存量不变时分页结果稳定。
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]StockEntry, error)

	// DeleteSku 删除该 sku 的所有库位行并返回删除数量。
	// 没有任何行匹配时返回 ErrSkuNotFound。
	DeleteSku(ctx context.Context, sku string) (int, error)

	// DeleteSkuLocation 删除单个 (sku, location) 行。
	// 行不存在时返回 ErrLocationNotFound。
	DeleteSkuLocation(ctx context.Context, sku, location string) error
}
