package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/queue"

	"github.com/hibiken/asynq"
)

var (
	errQueueDisabled = errors.New("queue disabled")
	errNoConsumer    = errors.New("consumer is nil")
)

// Service asynq 消费端，生命周期由 app.Runner 管理
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewService 注册访问入账任务处理器并创建消费端
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errQueueDisabled
	}
	if consumer == nil {
		return nil, errNoConsumer
	}
	opt, serverCfg := queue.ServerConfig(cfg, logger.SW("component", "asynq"))
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server:  asynq.NewServer(opt, serverCfg),
		mux:     mux,
		stopped: make(chan struct{}),
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "visit_consumer"
}

// Start 启动消费并阻塞到 ctx 结束或 Stop 被调用
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		s.shutdown()
	case <-s.stopped:
	}
	return nil
}

// Stop 等待进行中的任务结束后退出
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.shutdown()
	return nil
}

func (s *Service) shutdown() {
	s.stopOnce.Do(func() {
		s.server.Shutdown()
		close(s.stopped)
	})
}
