// internal/service/order/application/dto.go
package application

import "stockyard/internal/service/order/domain"

// OrderItemDTO 是下单请求/响应中的一行。
type OrderItemDTO struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest 是下单用例的输入数据。
type CreateOrderRequest struct {
	Items []OrderItemDTO `json:"items"`
}

// OrderResponse 是下单与查询用例的输出数据。
type OrderResponse struct {
	ID     int64          `json:"id"`
	Items  []OrderItemDTO `json:"items"`
	Status string         `json:"status"`
}

// ToOrderLines 将请求 DTO 转换为领域订单行。
func (req *CreateOrderRequest) ToOrderLines() []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, domain.OrderLine{SKU: item.SKU, Quantity: item.Quantity})
	}
	return lines
}

// ToOrderResponse 将领域订单转换为响应 DTO。
func ToOrderResponse(order *domain.Order) *OrderResponse {
	items := make([]OrderItemDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, OrderItemDTO{SKU: line.SKU, Quantity: line.Quantity})
	}
	return &OrderResponse{
		ID:     order.ID,
		Items:  items,
		Status: string(order.State),
	}
}
