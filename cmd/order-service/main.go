// cmd/order-service/main.go
package main

import (
	"os"
	"time"

	"go.opentelemetry.io/otel"

	"stockyard/internal/pkg/bootstrap"
	"stockyard/internal/pkg/httpclient"
	"stockyard/internal/pkg/logger"
	"stockyard/internal/service/order/application"
	"stockyard/internal/service/order/domain"
	"stockyard/internal/service/order/infrastructure"
	"stockyard/internal/service/order/infrastructure/adapter"
	"stockyard/internal/service/order/interfaces"
)

const serviceName = "order-service"

// main 函数是应用的"组装根" (Composition Root)：
// 创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	tracer := otel.Tracer(serviceName)

	// 订单存储：默认 MySQL，ORDER_BACKEND=memory 时使用进程内实现
	var repo domain.OrderRepository
	if os.Getenv("ORDER_BACKEND") == "memory" {
		repo = infrastructure.NewMemoryOrderRepository()
	} else {
		db, err := infrastructure.NewMysqlDB(cfg.Infra.Mysql.DSN)
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to initialize mysql")
		}
		repo = infrastructure.NewGormOrderRepository(db)
	}

	inventory := adapter.NewInventoryHTTPAdapter(
		httpclient.NewClient(tracer),
		cfg.App.InventoryBaseURL,
		cfg.App.InventoryAPIKey,
	)

	service := application.NewOrderApplicationService(
		repo,
		inventory,
		tracer,
		cfg.App.ReservationLocation,
		time.Duration(cfg.App.ReserveTimeout),
	)
	handler := interfaces.NewOrderHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
