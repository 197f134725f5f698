// internal/service/inventory/application/dto.go
package application

// AdjustRequest 是单次库存调整的输入。Quantity 是带符号增量。
type AdjustRequest struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

// AdjustResponse 回显调整后的新数量。
type AdjustResponse struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

// BatchAdjustItem 是批量调整中的一项，语义与 AdjustRequest 相同。
type BatchAdjustItem struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

// BatchAdjustResult 是批量调整的单项结果，与输入同序同长。
// 每一项独立成败：失败项不会阻止、回滚其他任何项。
type BatchAdjustResult struct {
	SKU         string `json:"sku"`
	Location    string `json:"location"`
	Quantity    int    `json:"quantity"`
	Success     bool   `json:"success"`
	NewQuantity *int   `json:"new_quantity,omitempty"`
	Error       string `json:"error,omitempty"`
}
