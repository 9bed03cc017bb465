package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRenderDocument renders a stored document to PDF.
	TaskRenderDocument = "documents:render"
)

// RenderPayload identifies the document to render.
type RenderPayload struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// NewRenderTask constructs an Asynq task.
func NewRenderTask(kind string, id int64) (*asynq.Task, error) {
	if kind == "" || id <= 0 {
		return nil, fmt.Errorf("jobs: invalid render payload %s/%d", kind, id)
	}
	data, err := json.Marshal(RenderPayload{Kind: kind, ID: id})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRenderDocument, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}
