package app

import (
	"errors"
	"net"

	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/provider"
	"github.com/clickvault/internal/router"
	"github.com/clickvault/internal/worker"
)

// BuildRunner 按模式装配服务，HTTP 排在最前以便最先停止
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)
	var services []Service

	if modeServesHTTP(mode) {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(listenAddr(cfg), engine))
	}

	if modeRunsWorkers(mode) {
		// 补投不依赖队列：队列关闭时直接同步分发
		relay, err := worker.NewRelayService(&cfg.Outbox, container.VisitEventDispatcher)
		if err != nil {
			return nil, err
		}
		services = append(services, relay)

		if cfg.Queue.Enabled {
			consumer, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				return nil, err
			}
			services = append(services, consumer)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}

// Run 应用启动入口
func Run(opts Options) error {
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	opts.Mode = mode
	opts = normalizeOptions(opts)

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start",
		"addr", listenAddr(opts.Config),
		"mode", opts.Mode,
		"services", runner.Names(),
	)
	return RunWithOptions(runner, opts)
}
