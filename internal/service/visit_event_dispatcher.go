package service

import (
	"context"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/queue"
	"github.com/clickvault/internal/repository"
)

// VisitEventDispatcher 访问事件投递与消费：入队失败或队列未启用时同步处理，
// 事件被条件更新抢占后只处理一次，失败不自动重试。
type VisitEventDispatcher struct {
	events      repository.VisitEventRepository
	actionRepo  repository.AdminActionLogRepository
	engine      CommissionEngine
	queueClient *queue.Client
}

// NewVisitEventDispatcher 创建访问事件投递器
func NewVisitEventDispatcher(
	events repository.VisitEventRepository,
	actionRepo repository.AdminActionLogRepository,
	engine CommissionEngine,
	queueClient *queue.Client,
) *VisitEventDispatcher {
	return &VisitEventDispatcher{
		events:      events,
		actionRepo:  actionRepo,
		engine:      engine,
		queueClient: queueClient,
	}
}

// Dispatch 投递事件；队列可用时入队，否则同步处理。错误仅记录日志
func (d *VisitEventDispatcher) Dispatch(ctx context.Context, eventID uint) {
	if d == nil || eventID == 0 {
		return
	}
	if d.queueClient.Enabled() {
		err := d.queueClient.EnqueueVisitRecorded(context.WithoutCancel(ctx), eventID)
		if err == nil {
			return
		}
		logger.Warnw("visit_event_enqueue_failed", "visit_event_id", eventID, "error", err)
		return
	}
	if _, err := d.Process(context.WithoutCancel(ctx), eventID); err != nil {
		logger.Warnw("visit_commission_dispatch_failed", "visit_event_id", eventID, "error", err)
	}
}

// Process 抢占并处理事件，返回处理后的事件（未抢占到返回 nil）
func (d *VisitEventDispatcher) Process(ctx context.Context, eventID uint) (*models.VisitEvent, error) {
	claimed, err := d.events.Claim(eventID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}
	event, err := d.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrVisitEventNotFound
	}

	commission, procErr := d.engine.ProcessCommission(ctx, event.UserID, event.VisitID, event.UserEarning.Decimal, event.PlatformShare.Decimal)
	if procErr != nil {
		if markErr := d.events.MarkFailed(event.ID, procErr.Error()); markErr != nil {
			logger.Errorw("visit_event_mark_failed_error", "visit_event_id", event.ID, "error", markErr)
		}
		return nil, procErr
	}

	status := constants.VisitEventStatusSkipped
	var commissionID *uint
	if commission != nil {
		status = constants.VisitEventStatusProcessed
		id := commission.ID
		commissionID = &id
	}
	if err := d.events.MarkDone(event.ID, status, commissionID); err != nil {
		return nil, err
	}
	return d.events.GetByID(event.ID)
}

// RelayPending 补偿投递超过宽限期仍为 pending 的事件，返回投递数量
func (d *VisitEventDispatcher) RelayPending(ctx context.Context, grace time.Duration, limit int) (int, error) {
	events, err := d.events.ListPendingBefore(time.Now().Add(-grace), limit)
	if err != nil {
		return 0, err
	}
	for _, event := range events {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		d.Dispatch(ctx, event.ID)
	}
	return len(events), nil
}

// Requeue 管理员将失败事件重新投递
func (d *VisitEventDispatcher) Requeue(ctx context.Context, adminID, eventID uint) error {
	event, err := d.events.GetByID(eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrVisitEventNotFound
	}
	ok, err := d.events.Requeue(eventID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVisitEventNotFailed
	}
	if err := recordAdminAction(d.actionRepo, adminID, constants.AdminActionEventRequeue, "visit_event", eventID, models.JSON{
		"visit_id":   event.VisitID,
		"last_error": event.LastError,
	}); err != nil {
		logger.Warnw("visit_event_requeue_audit_failed", "visit_event_id", eventID, "error", err)
	}
	d.Dispatch(ctx, eventID)
	return nil
}

// List 事件列表
func (d *VisitEventDispatcher) List(filter repository.VisitEventListFilter) ([]models.VisitEvent, int64, error) {
	return d.events.List(filter)
}
