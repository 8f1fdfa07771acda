package worker

import (
	"context"
	"errors"
	"time"

	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/logger"
)

const (
	defaultRelayInterval = time.Minute
	defaultRelayGrace    = 2 * time.Minute
	defaultRelayBatch    = 100
)

type pendingRelayer interface {
	RelayPending(ctx context.Context, grace time.Duration, limit int) (int, error)
}

// RelayService 周期性补偿投递长时间停留在 pending 的访问事件
type RelayService struct {
	relayer  pendingRelayer
	interval time.Duration
	grace    time.Duration
	batch    int
	done     chan struct{}
}

// NewRelayService 创建补偿投递服务
func NewRelayService(cfg *config.OutboxConfig, relayer pendingRelayer) (*RelayService, error) {
	if relayer == nil {
		return nil, errors.New("relayer is nil")
	}
	s := &RelayService{
		relayer:  relayer,
		interval: defaultRelayInterval,
		grace:    defaultRelayGrace,
		batch:    defaultRelayBatch,
		done:     make(chan struct{}),
	}
	if cfg != nil {
		if cfg.RelayIntervalSeconds > 0 {
			s.interval = time.Duration(cfg.RelayIntervalSeconds) * time.Second
		}
		if cfg.RelayGraceSeconds > 0 {
			s.grace = time.Duration(cfg.RelayGraceSeconds) * time.Second
		}
		if cfg.RelayBatchSize > 0 {
			s.batch = cfg.RelayBatchSize
		}
	}
	return s, nil
}

// Name 服务名称
func (s *RelayService) Name() string {
	return "outbox_relay"
}

// Start 阻塞运行直到 ctx 取消或 Stop
func (s *RelayService) Start(ctx context.Context) error {
	if s == nil || s.relayer == nil {
		return errors.New("relay service not initialized")
	}
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop 停止服务
func (s *RelayService) Stop(ctx context.Context) error {
	if s == nil || s.done == nil {
		return nil
	}
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}

func (s *RelayService) runOnce(ctx context.Context) {
	relayed, err := s.relayer.RelayPending(ctx, s.grace, s.batch)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warnw("worker_outbox_relay_failed", "error", err)
		}
		return
	}
	if relayed > 0 {
		logger.Infow("worker_outbox_relayed", "count", relayed)
	}
}
