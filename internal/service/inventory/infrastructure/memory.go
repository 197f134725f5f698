// internal/service/inventory/infrastructure/memory.go
package infrastructure

import (
	"context"
	"sort"
	"sync"

	"stockyard/internal/pkg/keylock"
	"stockyard/internal/service/inventory/domain"
)

// MemoryStockRepository 是 StockRepository 的进程内实现。
// 读-改-写通过 keylock 按 (sku, location) 串行化，map 本身只在
// 短临界区内由 mu 保护，读操作不会阻塞其他 key 上的写入。
type MemoryStockRepository struct {
	mu    sync.RWMutex
	rows  map[string]map[string]int // sku -> location -> quantity
	locks *keylock.KeyLock
}

func NewMemoryStockRepository() *MemoryStockRepository {
	return &MemoryStockRepository{
		rows:  make(map[string]map[string]int),
		locks: keylock.New(),
	}
}

func (r *MemoryStockRepository) Get(ctx context.Context, sku string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	locations, ok := r.rows[sku]
	if !ok || len(locations) == 0 {
		return nil, domain.ErrSkuNotFound
	}
	out := make(map[string]int, len(locations))
	for location, qty := range locations {
		out[location] = qty
	}
	return out, nil
}

func lockKey(sku, location string) string {
	return sku + "\x00" + location
}

func (r *MemoryStockRepository) Adjust(ctx context.Context, sku, location string, delta int) (int, error) {
	key := lockKey(sku, location)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	r.mu.RLock()
	current := 0
	if locations, ok := r.rows[sku]; ok {
		if qty, ok := locations[location]; ok {
			current = qty
		}
	}
	r.mu.RUnlock()

	next := current + delta
	if next < 0 {
		return 0, domain.ErrInsufficientStock
	}

	r.mu.Lock()
	locations, ok := r.rows[sku]
	if !ok {
		locations = make(map[string]int)
		r.rows[sku] = locations
	}
	locations[location] = next
	r.mu.Unlock()

	return next, nil
}

func (r *MemoryStockRepository) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]domain.StockEntry, error) {
	r.mu.RLock()
	var matched []domain.StockEntry
	for sku, locations := range r.rows {
		for location, qty := range locations {
			entry := domain.StockEntry{SKU: sku, Location: location, Quantity: qty}
			if filter.Matches(entry) {
				matched = append(matched, entry)
			}
		}
	}
	r.mu.RUnlock()

	// 固定排序，保证同一查询在存量不变时翻页不重不漏
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SKU != matched[j].SKU {
			return matched[i].SKU < matched[j].SKU
		}
		return matched[i].Location < matched[j].Location
	})

	if offset >= len(matched) {
		return []domain.StockEntry{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// DeleteSku 先快照该 sku 的库位并按序持有每个 key 的锁，
// 再删除快照到的行。删除因此不会落在某个 key 的读-改-写中间，
// 被删的行也不会被并发调整用删除前的旧值复活。
// 快照之后才建出的行不在持锁范围内，按"删除先于建行"串行化，保留。
func (r *MemoryStockRepository) DeleteSku(ctx context.Context, sku string) (int, error) {
	r.mu.RLock()
	locations := make([]string, 0, len(r.rows[sku]))
	for location := range r.rows[sku] {
		locations = append(locations, location)
	}
	r.mu.RUnlock()

	sort.Strings(locations)
	for _, location := range locations {
		r.locks.Lock(lockKey(sku, location))
	}
	defer func() {
		for i := len(locations) - 1; i >= 0; i-- {
			r.locks.Unlock(lockKey(sku, locations[i]))
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.rows[sku]
	removed := 0
	for _, location := range locations {
		if _, ok := rows[location]; ok {
			delete(rows, location)
			removed++
		}
	}
	if removed == 0 {
		return 0, domain.ErrSkuNotFound
	}
	if len(rows) == 0 {
		delete(r.rows, sku)
	}
	return removed, nil
}

func (r *MemoryStockRepository) DeleteSkuLocation(ctx context.Context, sku, location string) error {
	key := lockKey(sku, location)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	locations, ok := r.rows[sku]
	if !ok {
		return domain.ErrLocationNotFound
	}
	if _, ok := locations[location]; !ok {
		return domain.ErrLocationNotFound
	}
	delete(locations, location)
	if len(locations) == 0 {
		delete(r.rows, sku)
	}
	return nil
}
