package queue

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/constants"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// 队列名与权重：佣金结算走 critical
const (
	DefaultQueue  = constants.QueueDefault
	CriticalQueue = constants.QueueCritical

	defaultConcurrency = 10
	visitTaskTimeout   = 30 * time.Second
	shutdownTimeout    = 15 * time.Second
)

var defaultQueueWeights = map[string]int{CriticalQueue: 6, DefaultQueue: 3}

// redisOpt 队列独占的 Redis 连接参数
func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}

// Client 任务投递端；未启用队列时为 nil 客户端，投递直接忽略
type Client struct {
	client *asynq.Client
}

// NewClient 按配置创建投递端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(redisOpt(cfg))}, nil
}

// Enabled 是否会真正入队
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueVisitRecorded 投递访问入账事件。
// 任务只执行一次，失败的事件由补投扫描或后台手动重新投递。
func (c *Client) EnqueueVisitRecorded(ctx context.Context, eventID uint) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewVisitRecordedTask(VisitRecordedPayload{VisitEventID: eventID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(CriticalQueue),
		asynq.MaxRetry(0),
		asynq.Timeout(visitTaskTimeout),
	)
	return err
}

// ServerConfig 消费端配置，日志与任务失败统一走 zap
func ServerConfig(cfg *config.QueueConfig, log *zap.SugaredLogger) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency:     defaultConcurrency,
		Queues:          defaultQueueWeights,
		ShutdownTimeout: shutdownTimeout,
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	if log != nil {
		serverCfg.Logger = log
		serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Errorw("queue_task_failed", "type", task.Type(), "error", err)
		})
	}
	return redisOpt(cfg), serverCfg
}
