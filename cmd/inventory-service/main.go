// cmd/inventory-service/main.go
package main

import (
	"os"
	"time"

	"go.opentelemetry.io/otel"

	"stockyard/internal/pkg/bootstrap"
	"stockyard/internal/pkg/logger"
	"stockyard/internal/service/inventory/application"
	"stockyard/internal/service/inventory/domain"
	"stockyard/internal/service/inventory/infrastructure"
	"stockyard/internal/service/inventory/infrastructure/cache"
	"stockyard/internal/service/inventory/interfaces"
)

const serviceName = "inventory-service"

// main 函数是应用的"组装根" (Composition Root)：
// 创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	// 台账存储：默认 MySQL，STOCK_BACKEND=memory 时使用进程内实现
	var repo domain.StockRepository
	if os.Getenv("STOCK_BACKEND") == "memory" {
		repo = infrastructure.NewMemoryStockRepository()
	} else {
		db, err := infrastructure.NewMysqlDB(cfg.Infra.Mysql.DSN)
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to initialize mysql")
		}
		repo = infrastructure.NewGormStockRepository(db)
	}

	// 读缓存是可选的：未配置 Redis 地址时读路径直达存储
	var levelCache application.LevelCache
	if cfg.Infra.Redis.Addr != "" {
		levelCache = cache.NewStockLevelCache(cfg.Infra.Redis.Addr, time.Duration(cfg.Infra.Redis.CacheTTL))
	}

	service := application.NewInventoryService(repo, levelCache, otel.Tracer(serviceName))
	handler := interfaces.NewInventoryHandler(service, cfg.App.InventoryAPIKey)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
