// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/nacos"
	"fundgate/internal/pkg/tracing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppCtx 是交给各服务注册路由和后台任务的启动上下文
type AppCtx struct {
	// Ctx 在收到退出信号时被取消，后台消费者应以它为根
	Ctx    context.Context
	Router chi.Router
	Config *Config
	Nacos  *nacos.Client // 未配置 Nacos 时为 nil

	mu        sync.Mutex
	shutdowns []func(ctx context.Context)
}

// OnShutdown 注册一个关停钩子，按注册的逆序执行
func (a *AppCtx) OnShutdown(fn func(ctx context.Context)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shutdowns = append([]func(context.Context){fn}, a.shutdowns...)
}

// AppInfo 包含了启动一个服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	ConfigPath       string
	RegisterHandlers func(appCtx *AppCtx) error
}

// StartService 封装了通用的启动和优雅关停逻辑。
func StartService(info AppInfo) {
	// 1. 加载配置
	cfg, err := LoadConfig(info.ConfigPath)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load config")
	}
	if info.ServiceName != "" {
		cfg.Service.Name = info.ServiceName
	}
	logger.Init(cfg.Service.Name, cfg.Log)

	// 2. 初始化核心组件
	// a. Tracer
	tp, err := tracing.InitTracerProvider(cfg.Service.Name, cfg.Tracing)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// b. Nacos（可选）：配置中心覆盖本地配置，并注册服务实例
	var nacosClient *nacos.Client
	if cfg.Nacos.ServerAddrs != "" {
		nacosClient, err = nacos.NewNacosClient(cfg.Nacos.ServerAddrs, cfg.Nacos.Namespace, cfg.Nacos.Group)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		cfg = watchRemoteConfig(nacosClient, cfg)
	}
	SetCurrentConfig(cfg)

	var ip string
	if nacosClient != nil && cfg.Nacos.Register {
		if ip, err = getOutboundIP(); err != nil {
			logger.L().Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := nacosClient.RegisterServiceInstance(cfg.Service.Name, ip, cfg.Service.Port); err != nil {
			logger.L().Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	// 3. 路由与服务自身的组件
	rootCtx, stop := context.WithCancel(context.Background())
	router := newRouter(cfg)
	appCtx := &AppCtx{Ctx: rootCtx, Router: router, Config: cfg, Nacos: nacosClient}
	if info.RegisterHandlers != nil {
		if err := info.RegisterHandlers(appCtx); err != nil {
			logger.L().Fatal().Err(err).Msg("failed to register handlers")
		}
	}

	server := &http.Server{Addr: ":" + strconv.Itoa(cfg.Service.Port), Handler: router}
	go func() {
		logger.L().Info().Msgf("%s listening on :%d", cfg.Service.Name, cfg.Service.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	// 4. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info().Msgf("Shutting down service %s...", cfg.Service.Name)
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()

	// a. 从 Nacos 注销服务
	if nacosClient != nil {
		if ip != "" {
			if err := nacosClient.DeregisterServiceInstance(cfg.Service.Name, ip, cfg.Service.Port); err != nil {
				logger.L().Error().Err(err).Msg("Error deregistering from Nacos")
			}
		}
		nacosClient.Close()
	}

	// b. 关闭 HTTP 服务器，不再接收新请求
	if err := server.Shutdown(ctx); err != nil {
		logger.L().Error().Err(err).Msg("Error shutting down http server")
	}

	// c. 服务自己注册的资源（Kafka writer、数据库连接等）
	appCtx.mu.Lock()
	hooks := appCtx.shutdowns
	appCtx.mu.Unlock()
	for _, hook := range hooks {
		hook(ctx)
	}

	// d. 最后关闭 Tracer Provider，确保缓冲的 trace 都被发送出去
	if err := tp.Shutdown(ctx); err != nil {
		logger.L().Error().Err(err).Msg("Error shutting down tracer provider")
	}

	logger.L().Info().Msgf("Service %s gracefully shut down.", cfg.Service.Name)
}

func newRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Service.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "traceparent", "baggage"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// watchRemoteConfig 拉取配置中心里的配置叠加到本地配置上，并监听后续变更
func watchRemoteConfig(client *nacos.Client, local *Config) *Config {
	dataID := local.Nacos.DataID
	if dataID == "" {
		return local
	}
	content, err := client.GetConfig(dataID)
	if err != nil {
		logger.L().Warn().Err(err).Msg("remote config unavailable, keep local config")
		return local
	}
	merged := local
	if content != "" {
		if merged, err = MergeYAML(local, content); err != nil {
			logger.L().Warn().Err(err).Msg("remote config invalid, keep local config")
			merged = local
		}
	}

	err = client.ListenConfig(dataID, func(data string) {
		next, err := MergeYAML(local, data)
		if err != nil {
			logger.L().Error().Err(err).Msg("ignore invalid remote config update")
			return
		}
		SetCurrentConfig(next)
	})
	if err != nil {
		logger.L().Warn().Err(err).Msg("failed to listen remote config")
	}
	return merged
}

// getOutboundIP 通过一次 UDP "拨号" 获取本机出口 IP，不会真正发包
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
