package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/report"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "x", Queue: QueueDefault}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

type stubLoader struct {
	docs map[int64]report.Document
	err  error
}

func (s stubLoader) Load(ctx context.Context, kind documents.Kind, id int64) (report.Document, error) {
	if s.err != nil {
		return report.Document{}, s.err
	}
	doc, ok := s.docs[id]
	if !ok {
		return report.Document{}, httpx.ErrNotFound
	}
	return doc, nil
}

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(ctx context.Context, doc report.Document) ([]byte, error) {
	s.calls++
	return []byte("%PDF-" + doc.Number), nil
}

func renderTask(t *testing.T, kind string, id int64) *asynq.Task {
	t.Helper()
	task, err := NewRenderTask(kind, id)
	require.NoError(t, err)
	return task
}

func TestNewRenderTask(t *testing.T) {
	task := renderTask(t, "invoice", 7)
	assert.Equal(t, TaskRenderDocument, task.Type())

	var payload RenderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, RenderPayload{Kind: "invoice", ID: 7}, payload)

	_, err := NewRenderTask("", 7)
	require.Error(t, err)
	_, err = NewRenderTask("invoice", 0)
	require.Error(t, err)
}

func TestClientEnqueueRender(t *testing.T) {
	fake := &fakeEnqueuer{}
	client := &Client{client: fake}

	require.NoError(t, client.EnqueueRender(context.Background(), "purchase", 3))
	require.Len(t, fake.tasks, 1)
	assert.Equal(t, TaskRenderDocument, fake.tasks[0].Type())
	require.Len(t, fake.opts[0], 1)

	fake.err = errors.New("redis down")
	require.Error(t, client.EnqueueRender(context.Background(), "purchase", 4))

	var _ documents.Enqueuer = client
}

func newRenderJob(t *testing.T, loader DocumentLoader, renderer DocumentRenderer) *RenderJob {
	t.Helper()
	return &RenderJob{
		Loader:     loader,
		Renderer:   renderer,
		StorageDir: t.TempDir(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:    jobmetrics.NewMetrics(prometheus.NewRegistry()),
	}
}

func TestRenderJobStoresPDF(t *testing.T) {
	renderer := &stubRenderer{}
	loader := stubLoader{docs: map[int64]report.Document{
		7: {Kind: documents.KindInvoice, Number: "FAC-000007"},
	}}
	job := newRenderJob(t, loader, renderer)

	require.NoError(t, job.Handle(context.Background(), renderTask(t, "invoice", 7)))

	data, err := os.ReadFile(filepath.Join(job.StorageDir, "invoice-FAC-000007.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-FAC-000007", string(data))
	assert.Equal(t, 1, renderer.calls)
}

func TestRenderJobSkipsRetryOnBadInput(t *testing.T) {
	job := newRenderJob(t, stubLoader{}, &stubRenderer{})
	ctx := context.Background()

	err := job.Handle(ctx, asynq.NewTask(TaskRenderDocument, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(ctx, asynq.NewTask(TaskRenderDocument, []byte(`{"kind":"receipt","id":1}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(ctx, renderTask(t, "invoice", 99))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRenderJobRetriesTransientErrors(t *testing.T) {
	job := newRenderJob(t, stubLoader{err: errors.New("connection reset")}, &stubRenderer{})
	err := job.Handle(context.Background(), renderTask(t, "quotation", 1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Size: 4, Pending: 3, Active: 1}}, logger).MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Pending)
	assert.Equal(t, 4, body.Size)

	r = chi.NewRouter()
	NewHandler(stubInspector{err: errors.New("redis down")}, logger).MountRoutes(r)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	r = chi.NewRouter()
	NewHandler(nil, logger).MountRoutes(r)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
