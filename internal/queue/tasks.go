package queue

import (
	"encoding/json"
	"fmt"

	"github.com/clickvault/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVisitRecorded 访问入账事件任务（驱动推荐佣金）
	TaskVisitRecorded = constants.TaskVisitRecorded
)

// VisitRecordedPayload 访问入账事件载荷
type VisitRecordedPayload struct {
	VisitEventID uint `json:"visit_event_id"`
}

// NewVisitRecordedTask 创建访问入账事件任务
func NewVisitRecordedTask(payload VisitRecordedPayload) (*asynq.Task, error) {
	if payload.VisitEventID == 0 {
		return nil, fmt.Errorf("visit event id is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVisitRecorded, body), nil
}

// ParseVisitRecordedPayload 解析访问入账事件载荷
func ParseVisitRecordedPayload(task *asynq.Task) (VisitRecordedPayload, error) {
	var payload VisitRecordedPayload
	if task == nil {
		return payload, fmt.Errorf("task is nil")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if payload.VisitEventID == 0 {
		return payload, fmt.Errorf("visit event id is required")
	}
	return payload, nil
}
