// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stockyard/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM/MySQL 实现。
// 订单与订单行在同一个事务内写入。
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例。
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := ToOrderModel(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return err
	}
	// 回填数据库分配的自增 ID
	order.ID = model.ID
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Lines").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return ToDomainOrder(&model), nil
}

func (r *GormOrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).Preload("Lines").Order("id").Find(&models).Error
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ToDomainOrder(&models[i]))
	}
	return orders, nil
}
