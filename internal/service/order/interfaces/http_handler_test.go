package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"stockyard/internal/pkg/httpclient"
	invapp "stockyard/internal/service/inventory/application"
	invinfra "stockyard/internal/service/inventory/infrastructure"
	invhttp "stockyard/internal/service/inventory/interfaces"
	"stockyard/internal/service/order/application"
	"stockyard/internal/service/order/infrastructure"
	"stockyard/internal/service/order/infrastructure/adapter"
)

const testAPIKey = "testkey"

// testStack 同时拉起真实的库存服务和订单服务，中间走真实的 HTTP 适配器。
type testStack struct {
	inventory *httptest.Server
	orders    *httptest.Server
	stockRepo *invinfra.MemoryStockRepository
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	stockRepo := invinfra.NewMemoryStockRepository()
	invService := invapp.NewInventoryService(stockRepo, nil, otel.Tracer("test"))
	invMux := http.NewServeMux()
	invhttp.NewInventoryHandler(invService, testAPIKey).RegisterRoutes(invMux)
	inventoryServer := httptest.NewServer(invMux)
	t.Cleanup(inventoryServer.Close)

	orderRepo := infrastructure.NewMemoryOrderRepository()
	reserver := adapter.NewInventoryHTTPAdapter(
		httpclient.NewClient(otel.Tracer("test")), inventoryServer.URL, testAPIKey)
	orderService := application.NewOrderApplicationService(
		orderRepo, reserver, otel.Tracer("test"), "default", time.Second)
	orderMux := http.NewServeMux()
	NewOrderHandler(orderService).RegisterRoutes(orderMux)
	orderServer := httptest.NewServer(orderMux)
	t.Cleanup(orderServer.Close)

	return &testStack{
		inventory: inventoryServer,
		orders:    orderServer,
		stockRepo: stockRepo,
	}
}

func (s *testStack) seed(t *testing.T, sku, location string, qty int) {
	t.Helper()
	_, err := s.stockRepo.Adjust(context.Background(), sku, location, qty)
	require.NoError(t, err)
}

func (s *testStack) placeOrder(t *testing.T, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(s.orders.URL+"/orders", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func (s *testStack) levels(t *testing.T, sku string) map[string]int {
	t.Helper()
	levels, err := s.stockRepo.Get(context.Background(), sku)
	require.NoError(t, err)
	return levels
}

func TestPlaceOrder_EndToEnd_Confirmed(t *testing.T) {
	stack := newTestStack(t)
	stack.seed(t, "X", "default", 10)

	resp := stack.placeOrder(t, map[string]interface{}{
		"items": []map[string]interface{}{{"sku": "X", "quantity": 5}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order application.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	resp.Body.Close()
	require.Equal(t, "confirmed", order.Status)
	require.NotZero(t, order.ID)
	require.Equal(t, []application.OrderItemDTO{{SKU: "X", Quantity: 5}}, order.Items)

	// 台账已被预占扣减
	require.Equal(t, map[string]int{"default": 5}, stack.levels(t, "X"))

	// 确认后的订单对读者可见
	getResp, err := http.Get(stack.orders.URL + "/orders")
	require.NoError(t, err)
	var orders []application.OrderResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&orders))
	getResp.Body.Close()
	require.Len(t, orders, 1)
}

func TestPlaceOrder_EndToEnd_InsufficientStock(t *testing.T) {
	stack := newTestStack(t)
	stack.seed(t, "X", "default", 10)

	resp := stack.placeOrder(t, map[string]interface{}{
		"items": []map[string]interface{}{{"sku": "X", "quantity": 999}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error    string `json:"error"`
		Failures []struct {
			SKU      string `json:"sku"`
			Location string `json:"location"`
			Reason   string `json:"reason"`
		} `json:"failures"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	require.Len(t, body.Failures, 1)
	require.Equal(t, "X", body.Failures[0].SKU)
	require.Equal(t, "default", body.Failures[0].Location)
	require.Equal(t, "insufficient stock", body.Failures[0].Reason)

	// 台账不变，没有部分订单被持久化
	require.Equal(t, map[string]int{"default": 10}, stack.levels(t, "X"))

	getResp, err := http.Get(stack.orders.URL + "/orders")
	require.NoError(t, err)
	var orders []application.OrderResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&orders))
	getResp.Body.Close()
	require.Empty(t, orders)
}

// 部分可满足的批量：成功项已在台账落账，订单仍被拒绝，
// 且没有补偿性的反向调整——这是显式接受的不一致窗口。
func TestPlaceOrder_EndToEnd_PartialReservationGap(t *testing.T) {
	stack := newTestStack(t)
	stack.seed(t, "A", "default", 10)
	stack.seed(t, "B", "default", 1)

	resp := stack.placeOrder(t, map[string]interface{}{
		"items": []map[string]interface{}{
			{"sku": "A", "quantity": 4},
			{"sku": "B", "quantity": 5},
		},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// A 的扣减保留在台账上，B 不变
	require.Equal(t, map[string]int{"default": 6}, stack.levels(t, "A"))
	require.Equal(t, map[string]int{"default": 1}, stack.levels(t, "B"))
}

func TestPlaceOrder_EndToEnd_InventoryDown(t *testing.T) {
	stack := newTestStack(t)
	stack.inventory.Close() // 库存服务不可达

	resp := stack.placeOrder(t, map[string]interface{}{
		"items": []map[string]interface{}{{"sku": "X", "quantity": 1}},
	})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestPlaceOrder_BadRequestBody(t *testing.T) {
	stack := newTestStack(t)

	resp, err := http.Post(stack.orders.URL+"/orders", "application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// 结构不合法：空行集
	resp = stack.placeOrder(t, map[string]interface{}{"items": []map[string]interface{}{}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetOrderByID(t *testing.T) {
	stack := newTestStack(t)
	stack.seed(t, "X", "default", 10)

	resp := stack.placeOrder(t, map[string]interface{}{
		"items": []map[string]interface{}{{"sku": "X", "quantity": 2}},
	})
	var created application.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	getResp, err := http.Get(stack.orders.URL + "/orders/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var fetched application.OrderResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&fetched))
	getResp.Body.Close()
	require.Equal(t, created, fetched)

	getResp, err = http.Get(stack.orders.URL + "/orders/999")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, getResp.StatusCode)
	getResp.Body.Close()

	getResp, err = http.Get(stack.orders.URL + "/orders/abc")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, getResp.StatusCode)
	getResp.Body.Close()
}
