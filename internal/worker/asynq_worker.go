package worker

import (
	"context"
	"errors"

	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/provider"
	"github.com/clickvault/internal/queue"

	"github.com/hibiken/asynq"
)

type visitEventProcessor interface {
	Process(ctx context.Context, eventID uint) (*models.VisitEvent, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(container *provider.Container) *Consumer {
	return &Consumer{Container: container}
}

// Register 注册任务处理器
func (c *Consumer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TaskVisitRecorded, c.handleVisitRecorded)
}

func (c *Consumer) handleVisitRecorded(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.VisitEventDispatcher == nil {
		return errors.New("visit event dispatcher not initialized")
	}
	return processVisitRecorded(ctx, c.VisitEventDispatcher, task)
}

// processVisitRecorded 消费访问入账事件；事件处理失败已落库为 failed，不交由 asynq 重试
func processVisitRecorded(ctx context.Context, processor visitEventProcessor, task *asynq.Task) error {
	payload, err := queue.ParseVisitRecordedPayload(task)
	if err != nil {
		logger.Warnw("worker_visit_recorded_payload_invalid", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	event, err := processor.Process(ctx, payload.VisitEventID)
	if err != nil {
		logger.Warnw("worker_visit_recorded_failed",
			"visit_event_id", payload.VisitEventID,
			"error", err,
		)
		return nil
	}
	if event == nil {
		logger.Debugw("worker_visit_recorded_skip_claimed", "visit_event_id", payload.VisitEventID)
		return nil
	}
	logger.Debugw("worker_visit_recorded_done",
		"visit_event_id", event.ID,
		"status", event.Status,
		"attempts", event.Attempts,
	)
	return nil
}
