// internal/service/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"stockyard/internal/pkg/httpclient"
	"stockyard/internal/service/order/domain"
	"stockyard/internal/service/order/domain/port"
)

const batchAdjustPath = "/inventory/batch_adjust"

// InventoryHTTPAdapter 实现了 port.InventoryReserver 接口。
// 它把一次预占翻译成对库存服务 batch_adjust 端点的一次调用。
type InventoryHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
}

// NewInventoryHTTPAdapter 创建一个新的库存服务适配器。
func NewInventoryHTTPAdapter(client *httpclient.Client, baseURL, apiKey string) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client, baseURL: baseURL, apiKey: apiKey}
}

// batchAdjustItem / batchAdjustResult 是库存服务 batch_adjust 端点的线上形态。
type batchAdjustItem struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

type batchAdjustResult struct {
	SKU         string `json:"sku"`
	Location    string `json:"location"`
	Quantity    int    `json:"quantity"`
	Success     bool   `json:"success"`
	NewQuantity *int   `json:"new_quantity"`
	Error       string `json:"error"`
}

// Reserve 提交一批调整并原样返回逐项结果。
// 传输层失败（不可达、超时、非 200、响应形态不符）统一归类为
// ErrInventoryUnavailable；已经在服务端落账的项不会被撤回。
func (a *InventoryHTTPAdapter) Reserve(ctx context.Context, items []port.ReservationItem) ([]port.ReservationResult, error) {
	payload := make([]batchAdjustItem, 0, len(items))
	for _, item := range items {
		payload = append(payload, batchAdjustItem{
			SKU:      item.SKU,
			Location: item.Location,
			Quantity: item.Delta,
		})
	}

	header := http.Header{}
	header.Set("X-API-Key", a.apiKey)

	var results []batchAdjustResult
	if err := a.client.PostJSON(ctx, a.baseURL+batchAdjustPath, header, payload, &results); err != nil {
		return nil, errors.Wrap(domain.ErrInventoryUnavailable, err.Error())
	}
	if len(results) != len(items) {
		return nil, errors.Wrapf(domain.ErrInventoryUnavailable,
			"batch_adjust returned %d results for %d items", len(results), len(items))
	}

	out := make([]port.ReservationResult, 0, len(results))
	for _, r := range results {
		out = append(out, port.ReservationResult{
			SKU:         r.SKU,
			Location:    r.Location,
			Delta:       r.Quantity,
			Success:     r.Success,
			NewQuantity: r.NewQuantity,
			Reason:      r.Error,
		})
	}
	return out, nil
}
