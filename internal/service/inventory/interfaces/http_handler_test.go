package interfaces

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"stockyard/internal/service/inventory/application"
	"stockyard/internal/service/inventory/infrastructure"
)

const testAPIKey = "testkey"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo := infrastructure.NewMemoryStockRepository()
	service := application.NewInventoryService(repo, nil, otel.Tracer("test"))
	mux := http.NewServeMux()
	NewInventoryHandler(service, testAPIKey).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}, withKey bool) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if withKey {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func adjust(t *testing.T, server *httptest.Server, sku, location string, delta int) *http.Response {
	t.Helper()
	return doJSON(t, http.MethodPost, server.URL+"/inventory/"+sku+"/adjust",
		map[string]interface{}{"sku": sku, "location": location, "quantity": delta}, true)
}

func TestAPIKeyGate(t *testing.T) {
	server := newTestServer(t)

	// 凭证校验发生在任何台账逻辑之前
	resp := doJSON(t, http.MethodGet, server.URL+"/inventory", nil, false)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/inventory", nil)
	req.Header.Set("X-API-Key", "wrong")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestInventoryFlow(t *testing.T) {
	server := newTestServer(t)

	resp := adjust(t, server, "SKU001", "store1", 5)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var adjusted application.AdjustResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&adjusted))
	resp.Body.Close()
	require.Equal(t, 5, adjusted.Quantity)

	resp = adjust(t, server, "SKU001", "store1", -3)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, server.URL+"/inventory/SKU001", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var levels map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&levels))
	resp.Body.Close()
	require.Equal(t, map[string]int{"store1": 2}, levels)

	// 扣减过多 -> 400，存量不变
	resp = adjust(t, server, "SKU001", "store1", -5)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, server.URL+"/inventory/SKU001", nil, true)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&levels))
	resp.Body.Close()
	require.Equal(t, 2, levels["store1"])
}

func TestGetUnknownSku(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/inventory/SKU404", nil, true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestListFilteringAndPagination(t *testing.T) {
	server := newTestServer(t)

	seed := []struct {
		sku, location string
		qty           int
	}{
		{"SKU100", "store1", 10},
		{"SKU100", "store2", 20},
		{"SKU200", "store1", 5},
		{"SKU300", "store3", 30},
		{"SKU400", "store1", 15},
	}
	for _, s := range seed {
		resp := adjust(t, server, s.sku, s.location, s.qty)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	list := func(query string) []map[string]interface{} {
		resp := doJSON(t, http.MethodGet, server.URL+"/inventory"+query, nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out []map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()
		return out
	}

	require.Len(t, list("?limit=2"), 2)
	require.Len(t, list("?sku=SKU100"), 2)
	for _, row := range list("?location=store1") {
		require.Equal(t, "store1", row["location"])
	}
	for _, row := range list("?min_quantity=15") {
		require.GreaterOrEqual(t, row["quantity"].(float64), float64(15))
	}

	combined := list("?sku=SKU100&location=store2&min_quantity=15")
	require.Len(t, combined, 1)
	require.Equal(t, float64(20), combined[0]["quantity"])

	// 越界的分页参数是请求级校验错误
	resp := doJSON(t, http.MethodGet, server.URL+"/inventory?limit=0", nil, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, http.MethodGet, server.URL+"/inventory?limit=1001", nil, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, http.MethodGet, server.URL+"/inventory?offset=-1", nil, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestBatchAdjustEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp := adjust(t, server, "SKU100", "store1", 10)
	resp.Body.Close()

	// 单项失败不是请求级错误：始终 200，结果与输入同序同长
	resp = doJSON(t, http.MethodPost, server.URL+"/inventory/batch_adjust", []map[string]interface{}{
		{"sku": "SKU100", "location": "store1", "quantity": -4},
		{"sku": "SKU100", "location": "store1", "quantity": -100},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results []application.BatchAdjustResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	resp.Body.Close()

	require.Len(t, results, 2)
	require.True(t, results[0].Success)
	require.Equal(t, 6, *results[0].NewQuantity)
	require.False(t, results[1].Success)
	require.Equal(t, "insufficient stock", results[1].Error)

	// 请求本身不合法 -> 400
	resp = doJSON(t, http.MethodPost, server.URL+"/inventory/batch_adjust",
		[]map[string]interface{}{{"location": "store1", "quantity": 1}}, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteEndpoints(t *testing.T) {
	server := newTestServer(t)

	for _, location := range []string{"store1", "store2"} {
		resp := adjust(t, server, "SKU001", location, 5)
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodDelete, server.URL+"/inventory/SKU001", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	require.Equal(t, 2, body["removed"])

	// 删除后从所有读路径消失
	resp = doJSON(t, http.MethodGet, server.URL+"/inventory/SKU001", nil, true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// 重复删除 -> 404
	resp = doJSON(t, http.MethodDelete, server.URL+"/inventory/SKU001", nil, true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = adjust(t, server, "SKU002", "store1", 1)
	resp.Body.Close()
	resp = doJSON(t, http.MethodDelete, server.URL+"/inventory/SKU002/store1", nil, true)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, http.MethodDelete, server.URL+"/inventory/SKU002/store1", nil, true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestListLimitDefault(t *testing.T) {
	server := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp := adjust(t, server, fmt.Sprintf("SKU%03d", i), "store1", 1)
		resp.Body.Close()
	}
	resp := doJSON(t, http.MethodGet, server.URL+"/inventory", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	require.Len(t, out, 3)
}
