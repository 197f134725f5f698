// internal/service/order/domain/port/inventory.go
package port

import "context"

// ReservationItem 是提交给库存服务的一项调整。
// Delta 是带符号增量；预占时为负。
type ReservationItem struct {
	SKU      string
	Location string
	Delta    int
}

// ReservationResult 是批量预占的单项结果，与输入同序同长。
// 失败项不会阻止或回滚同批次中的其他项——这是台账一侧
// 刻意的非原子批量设计，如何解读部分失败由调用方决定。
type ReservationResult struct {
	SKU         string
	Location    string
	Delta       int
	Success     bool
	NewQuantity *int
	Reason      string
}

// InventoryReserver 是库存服务的出站端口。
// 返回 error 仅表示调用本身无法完成（传输层失败）；
// 单项的库存不足体现在结果列表中，不是 error。
type InventoryReserver interface {
	Reserve(ctx context.Context, items []ReservationItem) ([]ReservationResult, error)
}
