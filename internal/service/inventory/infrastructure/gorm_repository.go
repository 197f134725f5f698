// internal/service/inventory/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockyard/internal/service/inventory/domain"
)

// 并发的首次调整会在惰性建行时竞争同一个主键：
// FOR UPDATE 对不存在的行只拿间隙锁，两个事务都会走到 Create，
// 败者以重复键或死锁告终。这类失败重试即可，重试后会命中已建的行。
const maxAdjustRetries = 3

// GormStockRepository 是 StockRepository 的 GORM/MySQL 实现。
// 每个 key 上的串行化依赖事务内的 SELECT ... FOR UPDATE 行锁：
// 同一 (sku, location) 的并发调整在数据库一侧排队，
// 不同 key 之间互不阻塞，不存在跨 key 的全局锁。
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository 创建一个新的 GORM 仓储实例。
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) Get(ctx context.Context, sku string) (map[string]int, error) {
	var models []StockModel
	err := r.db.WithContext(ctx).Where("sku = ?", sku).Find(&models).Error
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, domain.ErrSkuNotFound
	}
	out := make(map[string]int, len(models))
	for i := range models {
		out[models[i].Location] = models[i].Quantity
	}
	return out, nil
}

func (r *GormStockRepository) Adjust(ctx context.Context, sku, location string, delta int) (int, error) {
	for attempt := 0; ; attempt++ {
		next, err := r.adjustOnce(ctx, sku, location, delta)
		if err != nil && attempt < maxAdjustRetries && isInsertRace(err) {
			continue
		}
		return next, err
	}
}

func (r *GormStockRepository) adjustOnce(ctx context.Context, sku, location string, delta int) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model StockModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("sku = ? AND location = ?", sku, location).
			First(&model).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 惰性建行：首次调整不允许把不存在的行调成负数
			if delta < 0 {
				return domain.ErrInsufficientStock
			}
			next = delta
			return tx.Create(&StockModel{SKU: sku, Location: location, Quantity: next}).Error
		case err != nil:
			return err
		}

		next = model.Quantity + delta
		if next < 0 {
			return domain.ErrInsufficientStock
		}
		return tx.Model(&StockModel{}).
			Where("sku = ? AND location = ?", sku, location).
			Update("quantity", next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// isInsertRace 识别建行竞争的两种结局：重复键 (1062) 与死锁 (1213)。
func isInsertRace(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062 || mysqlErr.Number == 1213
	}
	return false
}

func (r *GormStockRepository) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]domain.StockEntry, error) {
	query := r.db.WithContext(ctx).Model(&StockModel{})
	if filter.SKU != "" {
		query = query.Where("sku = ?", filter.SKU)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.MinQuantity != nil {
		query = query.Where("quantity >= ?", *filter.MinQuantity)
	}
	if filter.MaxQuantity != nil {
		query = query.Where("quantity <= ?", *filter.MaxQuantity)
	}

	var models []StockModel
	// 固定排序，保证同一查询在存量不变时翻页不重不漏
	err := query.Order("sku, location").Limit(limit).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.StockEntry, 0, len(models))
	for i := range models {
		entries = append(entries, ToDomainStockEntry(&models[i]))
	}
	return entries, nil
}

func (r *GormStockRepository) DeleteSku(ctx context.Context, sku string) (int, error) {
	result := r.db.WithContext(ctx).Where("sku = ?", sku).Delete(&StockModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, domain.ErrSkuNotFound
	}
	return int(result.RowsAffected), nil
}

func (r *GormStockRepository) DeleteSkuLocation(ctx context.Context, sku, location string) error {
	result := r.db.WithContext(ctx).
		Where("sku = ? AND location = ?", sku, location).
		Delete(&StockModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrLocationNotFound
	}
	return nil
}
