// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"stockyard/internal/service/order/domain"
)

// OrderModel 是订单在数据库中的映射。
type OrderModel struct {
	ID        int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Status    string           `gorm:"column:status;size:16;not null"`
	CreatedAt time.Time        `gorm:"column:created_at"`
	Lines     []OrderLineModel `gorm:"foreignKey:OrderID"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel 是订单行在数据库中的映射。
type OrderLineModel struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID  int64  `gorm:"column:order_id;index;not null"`
	SKU      string `gorm:"column:sku;size:64;not null"`
	Quantity int    `gorm:"column:quantity;not null"`
}

func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomainOrder 将数据库模型转换为领域模型。
func ToDomainOrder(m *OrderModel) *domain.Order {
	lines := make([]domain.OrderLine, 0, len(m.Lines))
	for _, line := range m.Lines {
		lines = append(lines, domain.OrderLine{SKU: line.SKU, Quantity: line.Quantity})
	}
	return &domain.Order{
		ID:        m.ID,
		Lines:     lines,
		State:     domain.State(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

// ToOrderModel 将领域模型转换为数据库模型。
func ToOrderModel(o *domain.Order) *OrderModel {
	lines := make([]OrderLineModel, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, OrderLineModel{SKU: line.SKU, Quantity: line.Quantity})
	}
	return &OrderModel{
		ID:        o.ID,
		Status:    string(o.State),
		CreatedAt: o.CreatedAt,
		Lines:     lines,
	}
}
