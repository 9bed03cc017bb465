package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/report"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DocumentLoader resolves the printable view of a document.
type DocumentLoader interface {
	Load(ctx context.Context, kind documents.Kind, id int64) (report.Document, error)
}

// DocumentRenderer converts a printable view into PDF bytes.
type DocumentRenderer interface {
	Render(ctx context.Context, doc report.Document) ([]byte, error)
}

// RenderJob loads a document, renders it and stores <kind>-<number>.pdf.
type RenderJob struct {
	Loader     DocumentLoader
	Renderer   DocumentRenderer
	StorageDir string
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *RenderJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Loader == nil || j.Renderer == nil {
		return errors.New("render job: handler not configured")
	}
	var payload RenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("render job: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	kind, err := documents.ParseKind(payload.Kind)
	if err != nil || payload.ID <= 0 {
		return fmt.Errorf("render job: invalid payload %s/%d: %w", payload.Kind, payload.ID, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskRenderDocument)
	defer func() {
		err = tracker.End(err)
	}()
	logger := j.logger().With(slog.String("kind", string(kind)), slog.Int64("id", payload.ID))

	doc, err := j.Loader.Load(ctx, kind, payload.ID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			logger.Warn("document to render not found")
			return fmt.Errorf("render job: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("render job: load: %w", err)
	}
	pdf, err := j.Renderer.Render(ctx, doc)
	if err != nil {
		logger.Error("render document", slog.Any("error", err))
		return fmt.Errorf("render job: render: %w", err)
	}
	path, err := j.save(doc.FileName(), pdf)
	if err != nil {
		return fmt.Errorf("render job: save: %w", err)
	}
	j.metrics().AddRendered(string(kind), len(pdf))
	logger.Info("document rendered", slog.String("file", path), slog.Int("bytes", len(pdf)))
	return nil
}

func (j *RenderJob) save(name string, pdf []byte) (string, error) {
	dir := j.StorageDir
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "odyssey-documents")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (j *RenderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRenderDocument))
	}
	return slog.Default().With(slog.String("job", TaskRenderDocument))
}

func (j *RenderJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
