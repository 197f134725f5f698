// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"stockyard/internal/pkg/logger"
	"stockyard/internal/pkg/tracing"
)

type AppCtx struct {
	Mux *http.ServeMux
}

// AppInfo 包含了启动一个服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 一个函数，允许每个服务注册自己独特的 HTTP 路由
}

// StartService 封装了所有服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	logger.Init(info.ServiceName)

	// 1. 初始化 Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, GetCurrentConfig().Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 2. 创建 HTTP Server
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux})
	}
	server := &http.Server{
		Addr:    ":" + strconv.Itoa(info.Port),
		Handler: withRequestID(mux),
	}

	g, gCtx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		logger.Logger().Info().Msgf("%s listening on %s", info.ServiceName, server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// 3. 优雅关停：阻塞等待退出信号或服务器异常
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Logger().Info().Msgf("shutting down service %s...", info.ServiceName)
	case <-gCtx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 关停顺序与启动相反 (后进先出)
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger().Error().Err(err).Msg("error shutting down http server")
	}
	if err := tp.Shutdown(ctx); err != nil {
		logger.Logger().Error().Err(err).Msg("error shutting down tracer provider")
	}
	if err := g.Wait(); err != nil {
		logger.Logger().Fatal().Err(err).Msgf("service %s exited abnormally", info.ServiceName)
	}

	logger.Logger().Info().Msgf("service %s gracefully shut down", info.ServiceName)
}

// withRequestID 为每个入站请求注入 request_id，并打一条访问日志。
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequestID(r.Context())
		logger.Ctx(ctx).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request received")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
