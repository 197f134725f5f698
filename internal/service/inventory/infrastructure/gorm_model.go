// internal/service/inventory/infrastructure/gorm_model.go
package infrastructure

import "stockyard/internal/service/inventory/domain"

// StockModel 是库存台账在数据库中的映射。
// (sku, location) 为复合主键，与领域键一致。
type StockModel struct {
	SKU      string `gorm:"column:sku;primaryKey;size:64"`
	Location string `gorm:"column:location;primaryKey;size:64"`
	Quantity int    `gorm:"column:quantity;not null"`
}

func (StockModel) TableName() string {
	return "inventory"
}

// ToDomainStockEntry 将数据库模型转换为领域模型。
func ToDomainStockEntry(m *StockModel) domain.StockEntry {
	return domain.StockEntry{
		SKU:      m.SKU,
		Location: m.Location,
		Quantity: m.Quantity,
	}
}
