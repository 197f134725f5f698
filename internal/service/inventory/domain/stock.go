// internal/service/inventory/domain/stock.go
package domain

import "errors"

// 领域错误。接口层通过 errors.Is 将它们映射为 HTTP 状态码。
var (
	// ErrSkuNotFound 表示该 sku 在任何库位下都没有台账行。
	ErrSkuNotFound = errors.New("sku not found")
	// ErrLocationNotFound 表示该 (sku, location) 没有台账行。
	ErrLocationNotFound = errors.New("sku location not found")
	// ErrInsufficientStock 表示一次调整会使库存变为负数，调整被拒绝，存量不变。
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockEntry 是库存台账的一行，由 (sku, location) 复合键唯一标识。
// 不变式: Quantity >= 0 对任何读者随时可见。
// 数量为 0 的行仍然是合法、可列出的条目，只能被显式删除。
type StockEntry struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

// ListFilter 描述列表查询的过滤条件，所有条件按 AND 组合。
// MinQuantity / MaxQuantity 为闭区间，nil 表示不限制。
type ListFilter struct {
	SKU         string
	Location    string
	MinQuantity *int
	MaxQuantity *int
}

// Matches 判断一行是否满足过滤条件。
func (f ListFilter) Matches(e StockEntry) bool {
	if f.SKU != "" && e.SKU != f.SKU {
		return false
	}
	if f.Location != "" && e.Location != f.Location {
		return false
	}
	if f.MinQuantity != nil && e.Quantity < *f.MinQuantity {
		return false
	}
	if f.MaxQuantity != nil && e.Quantity > *f.MaxQuantity {
		return false
	}
	return true
}
