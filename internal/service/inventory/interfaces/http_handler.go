// internal/service/inventory/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"stockyard/internal/service/inventory/application"
	"stockyard/internal/service/inventory/domain"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// InventoryHandler 封装了 inventory 服务的 HTTP 处理器。
type InventoryHandler struct {
	service *application.InventoryService
	apiKey  string
}

// NewInventoryHandler 创建一个新的 HTTP 处理器实例。
func NewInventoryHandler(service *application.InventoryService, apiKey string) *InventoryHandler {
	return &InventoryHandler{service: service, apiKey: apiKey}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
// 所有 /inventory 端点都在访问凭证校验之后才会触达台账逻辑。
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /inventory", h.withAuth(h.handleList))
	mux.HandleFunc("GET /inventory/{sku}", h.withAuth(h.handleGet))
	mux.HandleFunc("POST /inventory/{sku}/adjust", h.withAuth(h.handleAdjust))
	mux.HandleFunc("POST /inventory/batch_adjust", h.withAuth(h.handleBatchAdjust))
	mux.HandleFunc("DELETE /inventory/{sku}", h.withAuth(h.handleDeleteSku))
	mux.HandleFunc("DELETE /inventory/{sku}/{location}", h.withAuth(h.handleDeleteSkuLocation))
}

// withAuth 校验 X-API-Key。凭证是一个不透明的门禁：
// 缺失或不匹配直接拒绝，不进入任何台账逻辑。
func (h *InventoryHandler) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != h.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing api key")
			return
		}
		next(w, r)
	}
}

func (h *InventoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	query := r.URL.Query()
	filter := domain.ListFilter{
		SKU:      query.Get("sku"),
		Location: query.Get("location"),
	}

	if raw := query.Get("min_quantity"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_quantity must be an integer")
			return
		}
		filter.MinQuantity = &v
	}
	if raw := query.Get("max_quantity"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_quantity must be an integer")
			return
		}
		filter.MaxQuantity = &v
	}

	limit := defaultListLimit
	if raw := query.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxListLimit {
			writeError(w, http.StatusBadRequest, "limit must be an integer in [1,1000]")
			return
		}
		limit = v
	}
	offset := 0
	if raw := query.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = v
	}

	entries, err := h.service.List(ctx, filter, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *InventoryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	levels, err := h.service.GetStock(ctx, r.PathValue("sku"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h *InventoryHandler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// 路径中的 sku 为准，body 里的只是回显字段
	req.SKU = r.PathValue("sku")
	if req.Location == "" {
		writeError(w, http.StatusBadRequest, "location must not be empty")
		return
	}

	resp, err := h.service.Adjust(ctx, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InventoryHandler) handleBatchAdjust(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var items []application.BatchAdjustItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, item := range items {
		if item.SKU == "" || item.Location == "" {
			writeError(w, http.StatusBadRequest, "each item requires sku and location")
			return
		}
	}

	// 单项失败不是请求级错误：只要请求本身合法，始终返回 200
	results := h.service.BatchAdjust(ctx, items)
	writeJSON(w, http.StatusOK, results)
}

func (h *InventoryHandler) handleDeleteSku(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	removed, err := h.service.DeleteSku(ctx, r.PathValue("sku"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *InventoryHandler) handleDeleteSkuLocation(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if err := h.service.DeleteSkuLocation(ctx, r.PathValue("sku"), r.PathValue("location")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeDomainError 根据错误类型返回不同的 HTTP 状态码。
func writeDomainError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrSkuNotFound),
		errors.Is(err, domain.ErrLocationNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		statusCode = http.StatusBadRequest
	default:
		statusCode = http.StatusInternalServerError
	}
	writeError(w, statusCode, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
